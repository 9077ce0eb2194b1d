package models

import "time"

// Submission is a completed survey response as stored by the backend
type Submission struct {
	ID         string     `json:"_id,omitempty"`
	Email      string     `json:"email"`
	Profession Profession `json:"profession"`
	Answers    AnswerSet  `json:"answers"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Attachment is a media file recorded for one question
type Attachment struct {
	QuestionID  string
	FileName    string
	ContentType string
	Data        []byte
}

// FieldName is the multipart field the backend expects for this attachment
func (a Attachment) FieldName() string {
	return "video-" + a.QuestionID
}

// SubmissionRequest is a frozen answer set ready for transmission
type SubmissionRequest struct {
	Profession  Profession
	Answers     AnswerSet
	Attachments []Attachment
}

// SubmitResponse is the backend acknowledgement of a submission
type SubmitResponse struct {
	Message      string  `json:"message,omitempty"`
	HasSubmitted bool    `json:"hasSubmitted"`
	Profession   *string `json:"profession,omitempty"`
}
