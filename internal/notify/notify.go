// Package notify delivers account notifications to gym members.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
)

// Welcome is sent when a gym admin creates a member account.
type Welcome struct {
	To                string
	MemberName        string
	GymName           string
	TemporaryPassword string
}

// Notifier is implemented by every delivery channel.
type Notifier interface {
	MemberWelcome(ctx context.Context, msg Welcome) error
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Bonjour {{.MemberName}},</p>
<p>Votre compte membre chez <strong>{{.GymName}}</strong> est prêt.</p>
<p>Identifiant : {{.To}}<br>Mot de passe temporaire : <code>{{.TemporaryPassword}}</code></p>
<p>Vous devrez choisir un nouveau mot de passe lors de votre première connexion.</p>`))

func welcomeSubject(msg Welcome) string {
	return fmt.Sprintf("Bienvenue chez %s", msg.GymName)
}

func renderWelcome(msg Welcome) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogNotifier only logs. It is used when no email provider is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) MemberWelcome(_ context.Context, msg Welcome) error {
	n.log.Info("member welcome not emailed, no provider configured",
		zap.String("to", msg.To),
		zap.String("gym", msg.GymName),
	)
	return nil
}
