package kernel

type ApplicantID string

func NewApplicantID(id string) ApplicantID { return ApplicantID(id) }
func (a ApplicantID) String() string       { return string(a) }
func (a ApplicantID) IsEmpty() bool        { return string(a) == "" }

type CohortID string

func NewCohortID(id string) CohortID { return CohortID(id) }
func (c CohortID) String() string    { return string(c) }
func (c CohortID) IsEmpty() bool     { return string(c) == "" }

type TrackID string

func NewTrackID(id string) TrackID { return TrackID(id) }
func (t TrackID) String() string   { return string(t) }
func (t TrackID) IsEmpty() bool    { return string(t) == "" }

type SlotID string

func NewSlotID(id string) SlotID { return SlotID(id) }
func (s SlotID) String() string  { return string(s) }
func (s SlotID) IsEmpty() bool   { return string(s) == "" }

type InterviewID string

func NewInterviewID(id string) InterviewID { return InterviewID(id) }
func (i InterviewID) String() string       { return string(i) }
func (i InterviewID) IsEmpty() bool        { return string(i) == "" }

type AssessmentID string

func NewAssessmentID(id string) AssessmentID { return AssessmentID(id) }
func (a AssessmentID) String() string        { return string(a) }
func (a AssessmentID) IsEmpty() bool         { return string(a) == "" }
