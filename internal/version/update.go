package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	hashiVersion "github.com/hashicorp/go-version"
)

var latestAppVersionURL = struct {
	host string
	path string
}{
	host: "https://github.com",
	path: "/protalal11-ops/apk-forensic-toolkit/releases/latest/download/VERSION",
}

// IsUpdateAvailable compares the version of this build against the latest published release. Development builds
// (no version injected at build time) never report an update.
func IsUpdateAvailable(ctx context.Context) (bool, string, error) {
	currentVersionStr := FromBuild().Version
	currentVersion, err := hashiVersion.NewVersion(currentVersionStr)
	if err != nil {
		if currentVersionStr == valueNotProvided {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to parse current application version: %w", err)
	}

	latestVersion, err := fetchLatestApplicationVersion(ctx)
	if err != nil {
		return false, "", err
	}

	if latestVersion.GreaterThan(currentVersion) {
		return true, latestVersion.String(), nil
	}

	return false, "", nil
}

func fetchLatestApplicationVersion(ctx context.Context) (*hashiVersion.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestAppVersionURL.host+latestAppVersionURL.path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for latest version: %w", err)
	}

	resp, err := cleanhttp.DefaultClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d on fetching latest version: %s", resp.StatusCode, resp.Status)
	}

	versionBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read latest version: %w", err)
	}

	versionStr := strings.TrimSpace(string(versionBytes))
	return hashiVersion.NewVersion(versionStr)
}
