// Package services holds integrations with external providers.
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
	"github.com/travel-buddies/travel-buddies-backend/config"
	"github.com/travel-buddies/travel-buddies-backend/logger"
)

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailService sends application decision emails through Resend. With no
// API key configured it logs and skips sending, so local development does
// not need a Resend account.
type EmailService struct {
	config  *config.EmailConfig
	client  *resend.Client
	metrics *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "travelbuddies_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "travelbuddies_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "travelbuddies_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	} else {
		logger.GetLogger().Warnw("No Resend API key configured, emails will be skipped")
	}

	return &EmailService{
		config:  cfg,
		client:  client,
		metrics: metrics,
	}
}

// SendApplicationApproved tells an applicant they were accepted.
func (s *EmailService) SendApplicationApproved(ctx context.Context, to, username, tripTitle string) error {
	return s.send(ctx, to, fmt.Sprintf("You're in: %s", tripTitle), approvedEmailTemplate, map[string]string{
		"Username":  username,
		"TripTitle": tripTitle,
	})
}

// SendApplicationRejected tells an applicant they were not accepted.
func (s *EmailService) SendApplicationRejected(ctx context.Context, to, username, tripTitle string) error {
	return s.send(ctx, to, fmt.Sprintf("Update on your application to %s", tripTitle), rejectedEmailTemplate, map[string]string{
		"Username":  username,
		"TripTitle": tripTitle,
	})
}

func (s *EmailService) send(_ context.Context, to, subject, tmplText string, data map[string]string) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if s.client == nil {
		log.Infow("Skipping email, no provider configured", "to", to, "subject", subject)
		return nil
	}

	tmpl, err := template.New("email").Parse(tmplText)
	if err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var htmlContent bytes.Buffer
	if err := tmpl.Execute(&htmlContent, data); err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{to},
		Subject: subject,
		Html:    htmlContent.String(),
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email", "error", err, "to", to, "subject", subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully", "to", to, "subject", subject)
	return nil
}

const approvedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Application approved</title>
</head>
<body style="font-family: sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 20px auto; padding: 30px;">
        <h1 style="color: #2A9D8F;">Welcome aboard, {{.Username}}!</h1>
        <p>Your application to join "{{.TripTitle}}" was approved.</p>
        <p>You now have access to the trip chat. Say hi to your travel buddies!</p>
    </div>
</body>
</html>`

const rejectedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Application update</title>
</head>
<body style="font-family: sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 20px auto; padding: 30px;">
        <h1 style="color: #264653;">Hi {{.Username}},</h1>
        <p>Unfortunately your application to join "{{.TripTitle}}" was not accepted this time.</p>
        <p>There are plenty of other trips recruiting right now. Keep exploring!</p>
    </div>
</body>
</html>`
