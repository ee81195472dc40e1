package plateauth

// Mail composition. The wording tracks the framework's historical templates;
// only the embedded secret and its placement are functional, and tests pin
// those down.

const (
	subjectConfirmLogin  = "Confirm login."
	subjectConfirmEmail  = "Confirm your E-Mail address."
	subjectResetPassword = "Reset your password."
	subjectChangeEmail   = "Change your email."
)

func mailGreeting(acct *Account) string {
	if acct.FirstName == "" || acct.LastName == "" {
		return ""
	}
	return "Hello " + acct.FirstName + " " + acct.LastName + ",\n"
}

func loginCodeBody(acct *Account, code string) string {
	return mailGreeting(acct) +
		"<p>Someone has tried to log into your account from an unknown location. " +
		"Enter the following code to confirm the login.<br>" +
		"<strong style='font-size: large'>" + code + "</strong></p>"
}

func confirmCodeBody(acct *Account, code string) string {
	return mailGreeting(acct) +
		"<p>To confirm your email address enter the following code.<br>" +
		"<strong style='font-size: large'>" + code + "</strong></p>"
}

func resetLinkBody(acct *Account, link string) string {
	return mailGreeting(acct) +
		"<p>To reset your password, click the following link.<br>" +
		"<a href='" + link + "'>" + link + "</a></p>"
}

func changeLinkBody(acct *Account, link string) string {
	return mailGreeting(acct) +
		"<p>To change your email address, click the following link.<br>" +
		"<a href='" + link + "'>" + link + "</a></p>"
}
