// Package mailer provides the outbound mail transport used to deliver
// notifications, with SMTP, Postmark, and local development implementations
// behind a single Sender interface.
//
// A Message addresses every recipient of a notification in one send;
// transports report failure for the message as a whole. Senders must
// tolerate re-sending the same message, since the delivery worker retries
// failures with an identical payload.
//
// # Implementations
//
//   - NewSMTPSender: net/smtp with STARTTLS and PLAIN auth; the sender owns
//     its I/O deadline so a stalled server cannot block the caller forever
//   - NewPostmarkSender: Postmark transactional API with open/click tracking
//   - NewDevSender: writes each message to disk as an .html plus .json pair
//     for inspection during development
//
// # Usage
//
//	sender, err := mailer.NewSMTPSender(mailer.Config{
//	    SenderEmail: "notifier@example.com",
//	    SMTPHost:    "smtp.example.com",
//	    SMTPPort:    587,
//	    SMTPUseTLS:  true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	err = sender.Send(ctx, mailer.Message{
//	    Recipients: []string{"ops@example.com"},
//	    Subject:    "Disk space low",
//	    BodyHTML:   "<p>Volume /data is at 91%</p>",
//	})
//
// # Error Handling
//
// Delivery failures wrap ErrFailedToSendEmail; malformed messages are
// reported as ErrInvalidMessage before any network traffic happens; invalid
// construction parameters surface as ErrInvalidConfig. All three can be
// checked with errors.Is.
package mailer
