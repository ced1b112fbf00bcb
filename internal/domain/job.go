package domain

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// Channels lists every valid channel, in a stable order.
// Used by the worker pool to spawn one consumer group per topic.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush}
}

// EmailPayload is the email arm of a Job.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// SMSPayload is the SMS arm of a Job.
type SMSPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// PushPayload is the push arm of a Job. UserID is resolved to the user's
// registered endpoints at send time; Data travels opaque to the client.
type PushPayload struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// Job is a single logical notification: a channel discriminant plus exactly
// one matching payload arm. A Job is immutable once built; the worker copies
// it to bump Attempt when scheduling a retry.
type Job struct {
	ID      string  `json:"id"`
	Channel Channel `json:"channel"`
	Attempt int     `json:"attempt"`

	Email *EmailPayload `json:"email,omitempty"`
	SMS   *SMSPayload   `json:"sms,omitempty"`
	Push  *PushPayload  `json:"push,omitempty"`
}

// Validate checks the discriminant and that exactly the matching payload arm
// is present with a usable recipient.
func (j *Job) Validate() error {
	if !j.Channel.IsValid() {
		return ErrInvalidChannel
	}

	arms := 0
	if j.Email != nil {
		arms++
	}
	if j.SMS != nil {
		arms++
	}
	if j.Push != nil {
		arms++
	}
	if arms != 1 {
		return ErrPayloadMismatch
	}

	switch j.Channel {
	case ChannelEmail:
		if j.Email == nil {
			return ErrPayloadMismatch
		}
		if j.Email.To == "" {
			return ErrInvalidRecipient
		}
		if j.Email.Subject == "" {
			return ErrEmptyPayload
		}
	case ChannelSMS:
		if j.SMS == nil {
			return ErrPayloadMismatch
		}
		if j.SMS.To == "" {
			return ErrInvalidRecipient
		}
		if j.SMS.Message == "" {
			return ErrEmptyPayload
		}
	case ChannelPush:
		if j.Push == nil {
			return ErrPayloadMismatch
		}
		if j.Push.UserID == "" {
			return ErrInvalidRecipient
		}
		if j.Push.Title == "" {
			return ErrEmptyPayload
		}
	}
	return nil
}

// Retry returns a copy of the job with the attempt counter advanced.
func (j *Job) Retry() *Job {
	clone := *j
	clone.Attempt = j.Attempt + 1
	return &clone
}

// DispatchResult is what a dispatch caller sees. The shape is identical for
// queued and direct execution so callers cannot observe which mode served
// them. Fulfilled/Total are push fan-out counts kept for logs and metrics
// only; they are never serialized to the HTTP caller.
type DispatchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Fulfilled int `json:"-"`
	Total     int `json:"-"`
}
