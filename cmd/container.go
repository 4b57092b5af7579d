package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/fsx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/fsx/fsxs3"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/auth"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/iam/user/userinfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/kernel"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/logx"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/notify/notifyredis"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application/applicationapi"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application/applicationinfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/application/applicationsrv"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment/assessmentapi"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment/assessmentinfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/assessment/assessmentsrv"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/cohort/cohortinfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview/interviewapi"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview/interviewinfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/interview/interviewsrv"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning/provisioninginfra"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/recruitment/provisioning/provisioningsrv"
)

// Container holds all application dependencies
type Container struct {
	// Config
	AuthConfig auth.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Dispatcher notify.Dispatcher

	// Services
	TokenService       *auth.JWTService
	ApplicationService *applicationsrv.ApplicationService
	AssessmentService  *assessmentsrv.AssessmentService
	InterviewService   *interviewsrv.InterviewService

	// API Handlers
	ApplicationHandlers *applicationapi.Handlers
	AssessmentHandlers  *assessmentapi.Handlers
	InterviewHandlers   *interviewapi.Handlers

	// Middleware
	AuthMiddleware *auth.Middleware
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. AWS S3 Configuration
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(cfg)
	c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "uploads")

	// 4. Notification Dispatcher
	if os.Getenv("NOTIFY_MODE") == "console" {
		c.Dispatcher = NewConsoleDispatcher()
	} else {
		c.Dispatcher = notifyredis.NewQueueDispatcher(c.Redis, "notifications")
	}

	// 5. Auth Config
	c.AuthConfig = auth.DefaultConfig()
	c.AuthConfig.SecretKey = os.Getenv("JWT_SECRET")
	if c.AuthConfig.SecretKey == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		c.AuthConfig.SecretKey = "super-secret-key-please-change-me-in-production"
	}
}

func (c *Container) initServices() {
	// --- Repositories ---
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	cohortRepo := cohortinfra.NewPostgresCohortRepository(c.DB)
	applicationRepo := applicationinfra.NewPostgresApplicationRepository(c.DB)
	assessmentRepo := assessmentinfra.NewPostgresAssessmentRepository(c.DB)
	slotRepo := interviewinfra.NewPostgresSlotRepository(c.DB)
	interviewRepo := interviewinfra.NewPostgresInterviewRepository(c.DB)

	// --- Transactional Stores ---
	provisioningStore := provisioninginfra.NewPostgresStore(c.DB)
	bookingStore := interviewinfra.NewPostgresBookingStore(c.DB)

	// --- Token Service ---
	c.TokenService = auth.NewJWTService(c.AuthConfig)

	// --- Domain Services ---
	provisioner := provisioningsrv.NewAccountProvisioner(provisioningStore, userRepo)

	c.ApplicationService = applicationsrv.NewApplicationService(
		applicationRepo,
		cohortRepo,
		provisioner,
		c.Dispatcher,
	)

	c.AssessmentService = assessmentsrv.NewAssessmentService(
		assessmentRepo,
		applicationRepo,
		c.FileSystem,
		c.Dispatcher,
	)

	c.InterviewService = interviewsrv.NewInterviewService(
		slotRepo,
		interviewRepo,
		bookingStore,
		applicationRepo,
		c.ApplicationService,
		c.Dispatcher,
	)

	// --- Handlers ---
	c.ApplicationHandlers = applicationapi.NewHandlers(c.ApplicationService)
	c.AssessmentHandlers = assessmentapi.NewHandlers(c.AssessmentService)
	c.InterviewHandlers = interviewapi.NewHandlers(c.InterviewService)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewMiddleware(c.TokenService)
}

// ConsoleDispatcher implements notify.Dispatcher by printing events to
// the terminal, for local development
type ConsoleDispatcher struct{}

// NewConsoleDispatcher creates a new console-based dispatcher
func NewConsoleDispatcher() *ConsoleDispatcher {
	return &ConsoleDispatcher{}
}

// Dispatch prints the notification event to the terminal
func (d *ConsoleDispatcher) Dispatch(ctx context.Context, kind notify.TemplateKind, recipient kernel.Email, data map[string]any) error {
	fmt.Printf("[notify] %s -> %s %v\n", kind, recipient, data)
	return nil
}
