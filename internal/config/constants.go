package config

// JobStatus is the lifecycle state of a job row.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType tags a job with the handler that processes it.
type JobType string

const (
	JobTypeDocumentEmbedding JobType = "document_embedding"
	JobTypeStudioGenerate    JobType = "creative_studio_generate"
	JobTypeWizardImage       JobType = "wizard_image_generation"
	JobTypeCarouselRender    JobType = "carousel_render"
	JobTypeInstagramPublish  JobType = "social_publish_instagram"
	JobTypeFacebookPublish   JobType = "social_publish_facebook"
	JobTypeScheduledPublish  JobType = "scheduled_publish"
	JobTypeContentScrape     JobType = "content_scrape"
)

var AllowedJobTypes = []JobType{
	JobTypeDocumentEmbedding,
	JobTypeStudioGenerate,
	JobTypeWizardImage,
	JobTypeCarouselRender,
	JobTypeInstagramPublish,
	JobTypeFacebookPublish,
	JobTypeScheduledPublish,
	JobTypeContentScrape,
}

// DefaultMaxAttempts is applied when a job is created without an explicit ceiling.
const DefaultMaxAttempts = 3

// transitions is the closed set of legal status moves. A failed processing
// attempt goes back to pending only while attempts remain; completed and
// failed are terminal.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed, JobStatusPending},
	JobStatusCompleted:  {},
	JobStatusFailed:     {},
}

// CanTransition reports whether moving a job from one status to another is
// legal under the status machine. Every status mutation in the system goes
// through this check; there is no side path for retries.
func CanTransition(from, to JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(s JobStatus) bool {
	return len(transitions[s]) == 0
}

// ValidJobType reports whether t is one of the closed job type enumeration.
func ValidJobType(t JobType) bool {
	for _, allowed := range AllowedJobTypes {
		if allowed == t {
			return true
		}
	}
	return false
}
