package mailer

import "html/template"

const baseStyle = `
	body { font-family: Arial, sans-serif; line-height: 1.6; }
	.container { max-width: 600px; margin: 0 auto; padding: 20px; }
	.header { background-color: #1428a0; color: white; padding: 10px; text-align: center; }
	.content { padding: 20px; background-color: #f9f9f9; }
	.otp-code { font-size: 24px; font-weight: bold; text-align: center;
	            padding: 10px; background-color: #eaeaea; margin: 20px 0; }
	.footer { font-size: 12px; color: #666; text-align: center; margin-top: 20px; }
`

var verificationTemplate = template.Must(template.New(TemplateVerification).Parse(`
<html>
<head><style>` + baseStyle + `</style></head>
<body>
	<div class="container">
		<div class="header"><h2>PRISM Verification</h2></div>
		<div class="content">
			<p>Hello {{.Name}},</p>
			<p>Thank you for registering with the PRISM Worklet Management System. To complete your registration, please use the following verification code:</p>
			<div class="otp-code">{{.Code}}</div>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not request this code, please ignore this email.</p>
		</div>
		<div class="footer">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>&copy; {{.Year}} PRISM. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`))

var passwordResetTemplate = template.Must(template.New(TemplatePasswordReset).Parse(`
<html>
<head><style>` + baseStyle + `</style></head>
<body>
	<div class="container">
		<div class="header"><h2>PRISM Password Reset</h2></div>
		<div class="content">
			<p>Hello {{.Name}},</p>
			<p>We received a request to reset your password for the PRISM Worklet Management System. To reset your password, please use the following verification code:</p>
			<div class="otp-code">{{.Code}}</div>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not request this password reset, please ignore this email or contact support.</p>
		</div>
		<div class="footer">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>&copy; {{.Year}} PRISM. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`))
