package service

import (
	"fmt"
	"log"
	"os"
	"strings"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/utils"
	"time"
)

// SenderService turns committed booking events into outbound customer and
// operator notifications. Every send runs on its own goroutine and failures
// are only logged; delivery never affects the booking outcome.
type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) BookingConfirmed(appt db.Appointment) {
	emailData := entities.BookingEmailData{
		Name:          appt.Name,
		ReservationID: appt.ReservationID,
		Date:          appt.Date,
		Time:          appt.Time,
		ContactNumber: appt.ContactNumber,
		SpecialNote:   appt.SpecialNote,
		CurrentYear:   time.Now().Year(),
	}

	subject := "Your Session is Scheduled! - Floating Theraphy"
	plainBody := fmt.Sprintf(
		"Hi %s,\n\nWe've successfully received your booking! We are looking forward to seeing you at the lounge.\n\n"+
			"Reservation ID: %s\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Status: Scheduled\n\n"+
			"If you need to make any changes, please have your Reservation ID ready and contact us.\n\n"+
			"\"Relax. Recharge. Re-center.\"\n\n"+
			"Floating Theraphy. All rights reserved.",
		emailData.Name, emailData.ReservationID, emailData.Date, emailData.Time,
	)
	htmlBody := fmt.Sprintf(
		`<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: auto;">
			<div style="background-color: #2c3e50; padding: 30px; text-align: center;">
				<h1 style="color: #ffffff; margin: 0;">Floating Theraphy</h1>
			</div>
			<div style="padding: 30px; color: #444;">
				<h2 style="color: #2c3e50;">Hi %s,</h2>
				<p>We&rsquo;ve successfully received your booking! We are looking forward to seeing you at the lounge for your upcoming session.</p>
				<div style="background-color: #f8f9fa; border-left: 4px solid #3498db; padding: 20px; margin: 25px 0;">
					<p><strong>Reservation ID:</strong> %s</p>
					<p><strong>Date:</strong> %s</p>
					<p><strong>Time:</strong> %s</p>
					<p><strong>Status:</strong> Scheduled</p>
				</div>
				<p style="font-style: italic; color: #7f8c8d; text-align: center;">"Relax. Recharge. Re-center."</p>
			</div>
			<div style="padding: 20px; text-align: center; border-top: 1px solid #eee;">
				<p style="font-size: 12px; color: #95a5a6;">&copy; %d Floating Theraphy. All rights reserved.</p>
			</div>
		</div>`,
		emailData.Name, emailData.ReservationID, emailData.Date, emailData.Time, emailData.CurrentYear,
	)

	go func() {
		if err := SendEmailWithSendGrid(appt.Email, appt.Name, subject, plainBody, htmlBody); err != nil {
			log.Printf("ALERT (async): confirmation email failed for reservation %s: %v", appt.ReservationID, err)
		}
	}()

	smsMessage := fmt.Sprintf("Floating Theraphy: your session %s is scheduled for %s at %s. More details in your email.",
		appt.ReservationID, appt.Date, appt.Time)
	go func() {
		if err := SendSMS(appt.ContactNumber, smsMessage); err != nil {
			log.Printf("ALERT (async): confirmation SMS failed for reservation %s: %v", appt.ReservationID, err)
		}
	}()

	s.notifyOperators(emailData)
}

// notifyOperators sends the new-booking alert to the addresses configured in
// ADMIN_ALERT_EMAILS (comma-separated).
func (s *SenderService) notifyOperators(data entities.BookingEmailData) {
	recipients := os.Getenv("ADMIN_ALERT_EMAILS")
	if recipients == "" {
		return
	}

	note := data.SpecialNote
	if note == "" {
		note = "No special notes provided."
	}
	subject := fmt.Sprintf("New Booking Alert: %s", data.Name)
	plainBody := fmt.Sprintf(
		"A new appointment has been scheduled via the platform.\n\n"+
			"Customer: %s\nDate/Time: %s at %s\nContact: %s\nReservation ID: %s\nNote: %s\n\n"+
			"Log in to the Admin Dashboard to manage this session.",
		data.Name, data.Date, data.Time, data.ContactNumber, data.ReservationID, note,
	)
	htmlBody := fmt.Sprintf(
		`<div style="font-family: sans-serif; padding: 20px; border: 1px solid #eee;">
			<h2 style="color: #d35400;">New Appointment Notification</h2>
			<p>A new appointment has been scheduled via the platform.</p>
			<hr />
			<p><strong>Customer:</strong> %s</p>
			<p><strong>Date/Time:</strong> %s at %s</p>
			<p><strong>Contact:</strong> %s</p>
			<p><strong>Reservation ID:</strong> %s</p>
			<p><strong>Note:</strong> %s</p>
			<hr />
			<p>Log in to the Admin Dashboard to manage this session.</p>
		</div>`,
		data.Name, data.Date, data.Time, data.ContactNumber, data.ReservationID, note,
	)

	for _, email := range strings.Split(recipients, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		go func(toEmail string) {
			if err := SendEmailWithSendGrid(toEmail, "Operator", subject, plainBody, htmlBody); err != nil {
				log.Printf("ALERT (async): operator alert failed for reservation %s: %v", data.ReservationID, err)
			}
		}(email)
	}
}

func (s *SenderService) AppointmentStatusChanged(appt db.Appointment) {
	var subject, plainBody, htmlBody string

	switch appt.Status {
	case utils.AppointmentCompleted:
		subject = "Thank you for visiting Floating Theraphy!"
		plainBody = fmt.Sprintf(
			"Hi %s,\n\nThank you for visiting Floating Theraphy today! We hope you had a relaxing and rejuvenating experience.\n\n"+
				"Your session on %s is now marked as completed in our system.\n\n"+
				"We would love to see you again soon! You can book your next session anytime through our website.\n\n"+
				"Best regards,\nThe Floating Theraphy Team",
			appt.Name, appt.Date,
		)
		htmlBody = fmt.Sprintf(
			`<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: auto;">
				<div style="background-color: #27ae60; padding: 20px; text-align: center; color: white;"><h2>Session Completed</h2></div>
				<div style="padding: 30px; color: #444;">
					<p>Hi <strong>%s</strong>,</p>
					<p>Thank you for visiting <strong>Floating Theraphy</strong> today! We hope you had a relaxing and rejuvenating experience.</p>
					<p>Your session on <strong>%s</strong> is now marked as completed in our system.</p>
					<p>We would love to see you again soon! You can book your next session anytime through our website.</p>
					<br /><p>Best regards,<br/>The Floating Theraphy Team</p>
				</div>
			</div>`,
			appt.Name, appt.Date,
		)
	case utils.AppointmentCancelled:
		subject = "Update regarding your appointment - Floating Theraphy"
		plainBody = fmt.Sprintf(
			"Hi %s,\n\nThis email is to inform you that your appointment (ID: %s) scheduled for %s at %s has been cancelled.\n\n"+
				"If you did not request this cancellation or have questions, please contact our support team immediately.\n\n"+
				"We hope to serve you another time.\n\n"+
				"Best regards,\nThe Floating Theraphy Team",
			appt.Name, appt.ReservationID, appt.Date, appt.Time,
		)
		htmlBody = fmt.Sprintf(
			`<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: auto;">
				<div style="background-color: #e74c3c; padding: 20px; text-align: center; color: white;"><h2>Appointment Cancelled</h2></div>
				<div style="padding: 30px; color: #444;">
					<p>Hi <strong>%s</strong>,</p>
					<p>This email is to inform you that your appointment (ID: %s) scheduled for <strong>%s</strong> at <strong>%s</strong> has been <strong>cancelled</strong>.</p>
					<p>If you did not request this cancellation or have questions, please contact our support team immediately.</p>
					<p>We hope to serve you another time.</p>
					<br /><p>Best regards,<br/>The Floating Theraphy Team</p>
				</div>
			</div>`,
			appt.Name, appt.ReservationID, appt.Date, appt.Time,
		)
	default:
		return
	}

	go func() {
		if err := SendEmailWithSendGrid(appt.Email, appt.Name, subject, plainBody, htmlBody); err != nil {
			log.Printf("ALERT (async): status email (%s) failed for reservation %s: %v", appt.Status, appt.ReservationID, err)
		}
	}()
}
