package kernel

import "strings"

type Email string

func (e Email) String() string { return string(e) }
func (e Email) IsEmpty() bool  { return string(e) == "" }

// IsValid performs a minimal structural check; real validation is
// delegated to the mail transport.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.Contains(s, " ")
}

type MeetingLink string

func (m MeetingLink) String() string { return string(m) }
func (m MeetingLink) IsEmpty() bool  { return string(m) == "" }

type BucketURL string

func (b BucketURL) String() string { return string(b) }
func (b BucketURL) IsEmpty() bool  { return string(b) == "" }
