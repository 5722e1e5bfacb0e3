package bot

const textWelcome = "<b>Welcome!</b>\n\n" +
	"Partnership is built on mutual benefit: you recommend our legal services to your clients " +
	"and receive a share of the revenue they bring.\n\n" +
	"The commission is progressive: the higher the total monthly revenue of the clients you refer, " +
	"the higher your percentage.\n\n" +
	"Choose a section:"

const (
	textMainMenu       = "Main menu. Choose a section:"
	textError          = "⚠️ Something went wrong. Please try again later."
	textThrottled      = "⚠️ Please do not send messages so often. Try again in a few seconds."
	textThrottledShort = "⚠️ Too many requests. Please wait a moment."
	textStale          = "This form is no longer active."
	textCancelled      = "Cancelled."
	textUnknownUser    = "❌ We could not find your account. Send /start and try again."
)

// Questionnaire.
const (
	textCaseIntro = "After evaluating the case we will tell you the exact amount of your reward.\n" +
		"If you manage to sell the result for more, the difference is entirely yours."
	textCaseSubmitted = "✅ <b>The questionnaire has been sent for evaluation!</b>\n\n" +
		"Our lawyers will review your case and contact you shortly."
	textDocsIntro = "📎 <b>Documents</b>\n\n" +
		"Attach the documents related to the case. You can send several files in a row.\n\n"
)

const (
	textCaseCancelled  = "❌ The questionnaire has been cancelled."
	textCaseEmpty      = "Please answer with text."
	textCaseUseButtons = "Use the buttons under the summary to edit or submit the questionnaire."
	textDocsHint       = "Send documents, or press \"Done\" to see the summary."
	textDocsFailed     = "❌ Could not save the file %q. Please send it again."
)

// Profile, revenue and support.
const (
	textProfileMenu    = "<b>Partner profile</b>\n\nKeep your details up to date and follow your referral program here."
	textProfileMissing = "You have not filled in your profile yet."
	textProfileSaved   = "✅ Your profile has been saved."
	textRevenueSaved   = "✅ Revenue of <b>%s</b> has been recorded."
	textSupportPrompt  = "💌 You can write to our team at any time.\n\n<b>Just type your message below and it will be forwarded.</b>"
	textSupportSent    = "✅ Your message has been sent to our team."
	textSupportTooLong = "⚠️ The message is too long. Please keep it under %d characters."
	textAttachOutside  = "Documents are accepted while sending a case for evaluation. Press \"" + LabelSendCase + "\" to start."
	textNoCases        = "You have not sent any cases yet."
	textNoPayouts      = "No payouts yet."
)
