package conversation

import (
	"fmt"
	"strings"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"
)

const (
	dateButtonLayout  = "02 Jan 2006"
	dateLongLayout    = "02 January 2006"
	dateReplyIDPrefix = "date_"

	// ApologyText is sent when handling an event failed unexpectedly.
	ApologyText = "Sorry, something went wrong. Please try again by typing 'start'."

	// TransientFailureText is sent when the session kept changing underneath us.
	TransientFailureText = "We're handling another message from you right now. Please send that again in a moment."

	// ProcessingText tells the customer their screenshot arrived but needs a manual look.
	ProcessingText = "📩 We've received your payment screenshot and it is being processed. " +
		"Our team will confirm your order shortly."
)

func welcomeText(leadDays int) string {
	return "🎉 *Welcome to EeOnam - OnamSadhya 2025!* 🎉\n\n" +
		"We're excited to serve you delicious Onam Sadhya! " +
		"Let's start by selecting your preferred delivery date.\n\n" +
		fmt.Sprintf("Please choose a date (minimum %d days in advance), ", leadDays) +
		"or type one in YYYY-MM-DD format:"
}

func invalidDateText(dates []kernel.Date) string {
	lines := make([]string, 0, len(dates))
	for _, d := range dates {
		lines = append(lines, "• "+d.Format(dateButtonLayout))
	}
	return "Please select a valid date. Available dates:\n\n" +
		strings.Join(lines, "\n") +
		"\n\nYou can pick one from the list or type the date in YYYY-MM-DD format."
}

func dateSelectedText(d kernel.Date, summary string) string {
	return fmt.Sprintf("✅ Date selected: *%s*\n\n", d.Format(dateLongLayout)) +
		"Now, please select your preferred location:\n\n" +
		summary
}

const (
	moreLocationsText      = "More options:"
	invalidLocationText    = "Please select a valid location using the buttons provided."
	noLocationsText        = "Sorry, no locations are available right now. Please try again later by typing 'start'."
	addressRequestText     = "Please provide your delivery address or share your location."
	invalidSharedPointText = "Unable to process location. Please share your location again or type your address."
	screenshotRequestText  = "Please send a screenshot of your payment transaction."
)

func menuText(locationName string, d kernel.Date, listing string) string {
	return fmt.Sprintf("📍 Location: *%s*\n", locationName) +
		fmt.Sprintf("📅 Date: *%s*\n\n", d.Format(dateLongLayout)) +
		"🍽️ *Our Menu:*\n\n" +
		listing + "\n\n" +
		"*Note:* Payasams are included in sadhya, but can be ordered separately.\n\n" +
		"Please reply with your order in this format:\n" +
		"*Example:* 1 x 2, 3 x 1 (means 2 Veg Sadhya, 1 Palada Pradhaman)\n\n" +
		"Just type the numbers and quantities you want!"
}

func invalidOrderLinesText(minID, maxID int) string {
	return "Invalid format. Please use format like: 1 x 2, 3 x 1\n" +
		fmt.Sprintf("Where numbers %d-%d represent menu items and quantities.", minID, maxID)
}

func orderSummaryText(quote string, total kernel.Money, delivery bool) string {
	text := "📋 *Order Summary:*\n\n" +
		quote + "\n" +
		fmt.Sprintf("💰 *Total: %s*", total.Display())
	if delivery {
		text += "\n\n📍 Since you selected delivery, please share your delivery address.\n\n" +
			"You can either:\n" +
			"• Share your location using WhatsApp's location feature, OR\n" +
			"• Type your complete address"
	}
	return text
}

// PaymentDetailsText introduces the payment QR for o.
func PaymentDetailsText(o *order.Order, quote string) string {
	return "💳 *Payment Details*\n\n" +
		fmt.Sprintf("Order ID: *%s*\n", o.Code()) +
		fmt.Sprintf("Amount: *%s*\n\n", o.Total().Display()) +
		fmt.Sprintf("📋 *Your Order:*\n%s\n\n", quote) +
		"Please scan the QR code below to make payment.\n" +
		"After payment, send a screenshot of the transaction."
}

// PaymentQRCaption is the caption of the QR image.
func PaymentQRCaption(o *order.Order) string {
	return fmt.Sprintf("Scan to pay %s for Order %s", o.Total().Display(), o.Code())
}

// PaymentFallbackText replaces the QR image when it could not be rendered.
func PaymentFallbackText(o *order.Order, upiID string) string {
	return "⚠️ We couldn't generate your payment QR code right now.\n\n" +
		fmt.Sprintf("Please pay *%s* to UPI ID *%s* with note *%s*, ", o.Total().Display(), upiID, o.Code()) +
		"then send a screenshot of the transaction here."
}

// ConfirmationText acknowledges a stored payment screenshot.
func ConfirmationText(o *order.Order) string {
	return "✅ *Order Submitted Successfully!*\n\n" +
		fmt.Sprintf("Order ID: *%s*\n", o.Code()) +
		fmt.Sprintf("Amount: *%s*\n", o.Total().Display()) +
		fmt.Sprintf("Date: *%s*\n\n", o.DeliveryDate().Format(dateLongLayout)) +
		"Your payment screenshot has been received and is under verification.\n" +
		"You will receive a confirmation message once verified.\n\n" +
		"Thank you for ordering with EeOnam! 🎉"
}

// VerificationResultText tells the customer about the operator's decision.
func VerificationResultText(o *order.Order) string {
	if o.Status() == order.Verified {
		return "✅ *Payment Verified!*\n\n" +
			fmt.Sprintf("Order ID: *%s*\n", o.Code()) +
			fmt.Sprintf("Amount: *%s*\n", o.Total().Display()) +
			fmt.Sprintf("Date: *%s*\n\n", o.DeliveryDate().Format(dateLongLayout)) +
			"Your order has been confirmed! We'll prepare your delicious Onam Sadhya.\n\n" +
			"Thank you for choosing EeOnam! 🎉"
	}
	return "❌ *Payment Verification Failed*\n\n" +
		fmt.Sprintf("Order ID: *%s*\n\n", o.Code()) +
		"There was an issue with your payment verification. " +
		"Please contact us or submit a new order.\n\n" +
		"We apologize for any inconvenience."
}
