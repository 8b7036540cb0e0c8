package installer

import (
	"fmt"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"

	"dotfiles/internal/config"
	"dotfiles/internal/logger"
	"dotfiles/internal/state"
)

var fontSuffixes = []string{".ttf", ".otf", ".ttc"}

// SyncFonts installs fonts from GitHub releases into the user's font
// directory and removes fonts dropped from the config, deleting exactly the
// files recorded in the state.
func SyncFonts(fonts []config.Font, st *state.State, check bool) {
	logger.Debug("[DEBUG] Starting SyncFonts with %d fonts\n", len(fonts))

	usr, err := user.Current()
	if err != nil {
		logger.Error("[ERROR] Failed to get current user: %v\n", err)
		return
	}
	fontDir := filepath.Join(usr.HomeDir, "Library", "Fonts")

	existing := make(map[string]bool)
	for _, font := range fonts {
		existing[font.Name] = true

		cur, ok := st.Fonts[font.Name]
		if ok && cur.Version == font.Version {
			logger.Info("[INFO] Font %s version %s is current. Skipping.\n", font.Name, font.Version)
			continue
		}

		if check {
			logger.Info("[INFO] Would install font %s@%s\n", font.Name, font.Version)
			continue
		}

		installed, url, err := installFont(font, fontDir)
		if err != nil {
			logger.Error("[ERROR] Failed to install font %s: %v\n", font.Name, err)
			continue
		}
		logger.Success("[INFO] Installed font %s@%s (%d files)\n", font.Name, font.Version, len(installed))
		st.Fonts[font.Name] = state.FontState{
			Name:    font.Name,
			Version: font.Version,
			URL:     url,
			Files:   installed,
		}
	}

	for name, fontState := range st.Fonts {
		if existing[name] {
			continue
		}
		if check {
			logger.Info("[INFO] Would remove font %s (no longer in config)\n", name)
			continue
		}
		logger.Warn("[WARN] Font %s removed from config. Removing files...\n", name)
		for _, f := range fontState.Files {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				logger.Error("[ERROR] Failed to remove font file %s: %v\n", f, err)
			}
		}
		delete(st.Fonts, name)
	}

	logger.Debug("[DEBUG] Finished SyncFonts\n")
}

// installFont downloads a font release archive, extracts it, and copies the
// font files into fontDir. Returns the installed file paths and the asset URL.
func installFont(font config.Font, fontDir string) ([]string, string, error) {
	if font.Source != "" && font.Source != "github" {
		return nil, "", fmt.Errorf("unknown font source %q", font.Source)
	}

	repo := font.Repo
	if repo == "" {
		repo = font.Name
	}
	tag := font.Tag
	if tag == "" {
		tag = "v" + font.Version
	}

	release, err := resolveRelease(repo, tag)
	if err != nil {
		return nil, "", err
	}

	// Font releases usually ship one archive per family rather than per
	// platform, so match on the font name before trying platform patterns.
	assetName, assetURL := matchAsset(release, append([]string{font.Name}, platformPatterns()...))
	if assetURL == "" {
		return nil, "", fmt.Errorf("no archive asset found in release %s of %s", release.TagName, repo)
	}

	archivePath := "/tmp/" + path.Base(assetURL)
	logger.Info("[INFO] Downloading font asset %s to %s\n", assetName, archivePath)
	if err := downloadFile(assetURL, archivePath); err != nil {
		return nil, "", err
	}

	extractDir, err := os.MkdirTemp("", "font-")
	if err != nil {
		return nil, "", err
	}
	defer os.RemoveAll(extractDir)

	if _, err := ExtractArchive(archivePath, extractDir); err != nil {
		return nil, "", fmt.Errorf("failed to extract %s: %w", assetName, err)
	}

	if err := os.MkdirAll(fontDir, 0755); err != nil {
		return nil, "", err
	}

	var installed []string
	err = filepath.WalkDir(extractDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !isFontFile(p) {
			return nil
		}
		if err := copyBinary(p, fontDir); err != nil {
			return err
		}
		dest := filepath.Join(fontDir, filepath.Base(p))
		logger.Debug("[DEBUG] Installed font file %s\n", dest)
		installed = append(installed, dest)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if len(installed) == 0 {
		return nil, "", fmt.Errorf("no font files found in %s", assetName)
	}
	return installed, assetURL, nil
}

func isFontFile(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range fontSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
