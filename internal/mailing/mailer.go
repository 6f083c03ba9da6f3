package mailing

import (
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Skotchmaster/canteen/internal/models"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Inbox receives feedback copies.
	Inbox string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	inbox  string
	dialer sender
}

func NewMailer(cfg Config) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		from:   from,
		inbox:  cfg.Inbox,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

var orderTmpl = template.Must(template.New("order").Parse(`<p>Здравствуйте, {{.User.Name}}!</p>
<p>Ваш заказ №{{.Order.OrderNumber}} принят. Получение в {{.Order.EstimatedTime}}.</p>
<ul>{{range .Order.Items}}<li>{{.Name}} × {{.Quantity}}</li>{{end}}</ul>
<p>Итого: {{.Order.Total}} ₽</p>`))

var feedbackTmpl = template.Must(template.New("feedback").Parse(`<p>От: {{.Name}} &lt;{{.Email}}&gt;</p>
<p>{{.Message}}</p>`))

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (m *Mailer) OrderPlaced(o models.Order, u models.User) error {
	body, err := render(orderTmpl, struct {
		Order models.Order
		User  models.User
	}{o, u})
	if err != nil {
		return err
	}
	return m.send(u.Email, "Заказ №"+o.OrderNumber, body)
}

// FeedbackReceived forwards a message to the canteen inbox. Without an inbox
// it does nothing.
func (m *Mailer) FeedbackReceived(f models.Feedback) error {
	if m.inbox == "" {
		return nil
	}
	body, err := render(feedbackTmpl, f)
	if err != nil {
		return err
	}
	return m.send(m.inbox, "Отзыв с сайта столовой", body)
}
