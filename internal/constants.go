package internal

const (
	// ApplicationName is the non-capitalized name of the application (do not change this)
	ApplicationName = "aft"

	// ApplicationTitle is the human readable name used in reports
	ApplicationTitle = "APK Forensic Toolkit"

	// ProjectURL is where users can find more about the tool
	ProjectURL = "https://github.com/protalal11-ops/apk-forensic-toolkit"
)
