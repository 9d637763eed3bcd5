package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// ErrNoRecipient is returned when a message has no recipient address.
var ErrNoRecipient = errors.New("mail: no recipient")

// Message is an outgoing plain-text email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a SendGrid sender when key is set, otherwise a sender that logs.
func New(key, fromName, fromAddress string) Sender {
	if key == "" {
		return LogSender{}
	}
	return NewSendGridSender(key, fromName, fromAddress)
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridSender creates a SendGridSender.
func NewSendGridSender(key, fromName, fromAddress string) *SendGridSender {
	return &SendGridSender{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromAddress),
		subjPrefix: "[" + fromName + "] ",
	}
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))

	return m
}

// Send delivers msg. The SendGrid client does not take a context, so ctx
// is only checked before the request goes out.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return &SendError{StatusCode: res.StatusCode, Body: res.Body}
	}

	return nil
}

// SendError is returned when SendGrid refuses a message.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sendgrid: status %d: %s", e.StatusCode, e.Body)
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

// Send logs msg.
func (LogSender) Send(ctx context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return ErrNoRecipient
	}
	log.Printf("[MAIL] To=%s, Subject=%s\n%s", msg.ToAddress, msg.Subject, msg.Text)
	return nil
}
