package notify

import (
	"context"
	"f2fit/gym-manager/internal/metrics"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendNotifier sends emails via the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendNotifier(apiKey, from string, log *zap.Logger) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (n *ResendNotifier) MemberWelcome(ctx context.Context, msg Welcome) error {
	html, err := renderWelcome(msg)
	if err != nil {
		return errors.Wrap(err, "render welcome email")
	}

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: welcomeSubject(msg),
		Html:    html,
	})
	if err != nil {
		metrics.RecordEmail("member_welcome", "failed")
		return errors.Wrap(err, "resend send failed")
	}

	metrics.RecordEmail("member_welcome", "success")
	n.log.Info("welcome email sent", zap.String("message_id", sent.Id), zap.String("to", msg.To))
	return nil
}
