package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"text/template"
	"time"

	"vacation-rental/internal/dto/response"
	"vacation-rental/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notifier stopped")
)

const (
	queueSize   = 64
	sendTimeout = 15 * time.Second
)

// Sender is the part of *mail.Client the notifier needs.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

var bodyTemplate = template.Must(template.New("booking").Parse(`Hello {{.Guest.Name}},

We received your booking request {{.BookingID}} for {{.House.Name}}.

Package:   {{.Package.Name}}
Check-in:  {{.Stay.CheckIn}}
Check-out: {{.Stay.CheckOut}} ({{.Stay.Nights}} nights, {{.Stay.Guests}} guests)
Total:     {{printf "%.2f" .Pricing.Total}}

The request is pending until payment is completed.
`))

// EmailNotifier mails the guest a receipt for every stored booking request.
// Messages are queued and sent by a single background worker.
type EmailNotifier struct {
	sender Sender
	from   string
	queue  chan response.BookingSummary
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	log    *zap.Logger
}

// NewSMTPSender builds a go-mail client. It returns nil when no host is configured.
func NewSMTPSender(cfg utils.EmailConfig) (Sender, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return client, nil
}

// NewEmailNotifier starts the send worker. A nil sender only logs.
func NewEmailNotifier(sender Sender, from string, log *zap.Logger) *EmailNotifier {
	n := &EmailNotifier{
		sender: sender,
		from:   from,
		queue:  make(chan response.BookingSummary, queueSize),
		done:   make(chan struct{}),
		log:    log.With(zap.String("component", "email-notifier")),
	}

	n.wg.Add(1)
	go n.run()

	return n
}

func (n *EmailNotifier) BookingReceived(ctx context.Context, booking response.BookingSummary) error {
	select {
	case <-n.done:
		return ErrStopped
	default:
	}

	select {
	case n.queue <- booking:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop sends what is already queued and waits for the worker to exit.
func (n *EmailNotifier) Stop() {
	n.once.Do(func() { close(n.done) })
	n.wg.Wait()
}

func (n *EmailNotifier) run() {
	defer n.wg.Done()

	for {
		select {
		case booking := <-n.queue:
			n.deliver(booking)
		case <-n.done:
			for {
				select {
				case booking := <-n.queue:
					n.deliver(booking)
				default:
					return
				}
			}
		}
	}
}

func (n *EmailNotifier) deliver(booking response.BookingSummary) {
	log := n.log.With(
		zap.String("booking_id", booking.BookingID),
		zap.String("to", booking.Guest.Email),
	)

	if n.sender == nil {
		log.Info("Booking received (email disabled)")
		return
	}

	msg, err := buildMessage(n.from, booking)
	if err != nil {
		log.Error("Failed to build booking email", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error("Failed to send booking email", zap.Error(err))
		return
	}

	log.Info("Booking email sent")
}

func buildMessage(from string, booking response.BookingSummary) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set from %q: %w", from, err)
	}
	if err := msg.AddToFormat(booking.Guest.Name, booking.Guest.Email); err != nil {
		return nil, fmt.Errorf("set to %q: %w", booking.Guest.Email, err)
	}
	msg.Subject(fmt.Sprintf("Booking request %s received", booking.BookingID))

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, booking); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	return msg, nil
}
