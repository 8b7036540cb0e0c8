package installer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"runtime"
	"strings"

	"dotfiles/internal/config"
	"dotfiles/internal/logger"
)

// GitHubRelease is the subset of the GitHub release JSON we consume.
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// archiveSuffixes are the release asset formats the extractor understands.
var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".zip", ".7z"}

// platformPatterns returns the asset-name substrings that identify a build
// for the current OS/architecture, most specific first. Release naming is
// wildly inconsistent across projects, so both the Go names and the common
// aliases are tried.
func platformPatterns() []string {
	osAliases := map[string][]string{
		"darwin": {"darwin", "macos", "macOS", "apple-darwin"},
		"linux":  {"linux", "unknown-linux"},
	}
	archAliases := map[string][]string{
		"amd64": {"amd64", "x86_64"},
		"arm64": {"arm64", "aarch64"},
	}

	oses := osAliases[runtime.GOOS]
	if oses == nil {
		oses = []string{runtime.GOOS}
	}
	arches := archAliases[runtime.GOARCH]
	if arches == nil {
		arches = []string{runtime.GOARCH}
	}

	var patterns []string
	for _, o := range oses {
		for _, a := range arches {
			patterns = append(patterns, o+"_"+a, o+"-"+a, a+"-"+o)
		}
	}
	// OS-only fallbacks for projects that ship universal binaries.
	patterns = append(patterns, oses...)
	return patterns
}

// resolveRelease fetches release metadata for a repo/tag from the GitHub API.
func resolveRelease(repo, tag string) (*GitHubRelease, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/tags/%s", repo, tag)
	logger.Debug("[DEBUG] Fetching GitHub release from %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching release %s@%s: %w", repo, tag, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub release fetch failed for %s@%s: HTTP status %d", repo, tag, resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release JSON for %s@%s: %w", repo, tag, err)
	}
	return &release, nil
}

// matchAsset picks the first release asset matching one of the platform
// patterns and carrying a supported archive suffix.
func matchAsset(release *GitHubRelease, patterns []string) (name, url string) {
	for _, pattern := range patterns {
		for _, asset := range release.Assets {
			assetName := strings.ToLower(asset.Name)
			if !strings.Contains(assetName, strings.ToLower(pattern)) {
				continue
			}
			for _, suffix := range archiveSuffixes {
				if strings.HasSuffix(assetName, suffix) {
					return asset.Name, asset.BrowserDownloadURL
				}
			}
		}
	}
	return "", ""
}

// downloadFromGitHub downloads a tool's release asset for the local platform,
// extracts it, installs the binary, and returns the install path.
func downloadFromGitHub(tool config.Tool) (string, error) {
	repo := tool.Repo
	if repo == "" {
		repo = tool.Name
	}
	tag := tool.Tag
	if tag == "" {
		tag = "v" + tool.Version
	}

	release, err := resolveRelease(repo, tag)
	if err != nil {
		return "", err
	}
	logger.Debug("[DEBUG] Release %s has %d assets\n", release.TagName, len(release.Assets))

	assetName, assetURL := matchAsset(release, platformPatterns())
	if assetURL == "" {
		return "", fmt.Errorf("no asset matching %s/%s found in release %s of %s",
			runtime.GOOS, runtime.GOARCH, release.TagName, repo)
	}

	archivePath := "/tmp/" + path.Base(assetURL)
	logger.Info("[INFO] Downloading asset %s to %s\n", assetName, archivePath)
	if err := downloadFile(assetURL, archivePath); err != nil {
		return "", err
	}

	installed, err := ExtractAndInstall(archivePath, "/tmp/")
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", assetName, err)
	}
	logger.Debug("[DEBUG] Installed %s\n", installed)
	return installed, nil
}
