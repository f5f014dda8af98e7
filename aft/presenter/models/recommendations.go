package models

// GeneralRecommendations closes every human readable report.
var GeneralRecommendations = []string{
	"Encrypt sensitive data: never store sensitive data in clear text",
	"Use HTTPS: avoid plain HTTP for all network communication",
	"Validate input: validate every input received from users and other applications",
	"Least privilege: request only the permissions the application needs",
	"Update libraries: use the latest versions of libraries and dependencies",
	"Disable debugging: turn off debug mode in production builds",
	"Secure WebView: apply strict security restrictions to WebView",
	"Review code: perform regular security reviews of the source code",
	"Penetration testing: run penetration tests regularly",
	"Document: document every security control in place",
}
