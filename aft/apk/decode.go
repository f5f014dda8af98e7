package apk

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/avast/apkparser"
)

// DecodeManifestXML converts the binary AndroidManifest.xml of the given APK into indented plain text XML,
// resolving resource references where possible.
func DecodeManifestXML(path string) ([]byte, error) {
	var manifestContent bytes.Buffer
	enc := xml.NewEncoder(&manifestContent)
	enc.Indent("", "    ")

	zipErr, resErr, manErr := apkparser.ParseApk(path, enc)
	if zipErr != nil {
		return nil, fmt.Errorf("failed to unzip the APK: %w", zipErr)
	}
	if manErr != nil {
		return nil, fmt.Errorf("failed to parse AndroidManifest.xml: %w", manErr)
	}
	if resErr != nil {
		// the manifest is still usable, only resource references stay unresolved
		return manifestContent.Bytes(), &ResourcesError{Err: resErr}
	}

	return manifestContent.Bytes(), nil
}

// ResourcesError indicates resources.arsc could not be parsed while decoding the manifest.
type ResourcesError struct {
	Err error
}

func (e *ResourcesError) Error() string {
	return fmt.Sprintf("failed to parse resources: %v", e.Err)
}

func (e *ResourcesError) Unwrap() error {
	return e.Err
}
