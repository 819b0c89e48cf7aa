package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/example/asfalya/internal/config"
)

// SMSService sends activation codes to phone-only accounts via Twilio.
// Bulk-imported customers often have no email address, so SMS is the only
// channel that can reach them for activation.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates an SMSService. It returns a disabled service when
// Twilio credentials are not configured; sends then log and succeed.
func NewSMSService(cfg *config.Config) *SMSService {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &SMSService{client: client, from: cfg.TwilioFrom}
}

// SendActivationCode texts a one-time activation code to the given number.
func (s *SMSService) SendActivationCode(toPhone, otp string) error {
	if s.client == nil {
		log.Printf("[SMS] Twilio not configured, dropping SMS to %s", toPhone)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(toPhone)
	params.SetBody(fmt.Sprintf("Asfalya activation code: %s. It expires in 15 minutes.", otp))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.Printf("[SMS] Failed to send message: %v", err)
		return err
	}
	return nil
}
