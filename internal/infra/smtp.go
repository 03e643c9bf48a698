package infra

import (
	"fmt"
	"net/smtp"

	"github.com/saadullahkhan123123/saeedautobackend/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending shop notifications.
type Mailer struct {
	host       string
	user       string
	password   string
	addr       string
	alertEmail string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:       cfg.SMTPHost,
		user:       cfg.SMTPUser,
		password:   cfg.SMTPPassword,
		addr:       fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		alertEmail: cfg.AlertEmail,
	}
}

// SendLowStockAlert emails the shop's alert address that an item fell to or
// below its minimum stock level.
func (m *Mailer) SendLowStockAlert(name, sku string, quantity, minLevel int) error {
	if m.alertEmail == "" {
		return fmt.Errorf("mailer: no alert email configured")
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = []string{m.alertEmail}
	e.Subject = fmt.Sprintf("Low stock: %s (%s)", name, sku)
	e.Text = []byte(fmt.Sprintf(
		"Item %s (%s) is down to %d units (minimum level %d).\nRestock soon to avoid lost sales.",
		name, sku, quantity, minLevel,
	))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
