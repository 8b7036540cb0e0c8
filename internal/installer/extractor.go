package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/xi2/xz"

	"dotfiles/internal/logger"
)

// ExtractAndInstall extracts an archive and installs the binaries it
// contains into /usr/local/bin, falling back to $HOME/bin when that isn't
// writable. Returns the install path of the (first) binary.
func ExtractAndInstall(src, dest string) (string, error) {
	extractedPath, err := ExtractArchive(src, dest)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(extractedPath)
	if err != nil {
		return "", err
	}

	toolName := toolNameFromArchive(src)

	var binaries []string
	if info.IsDir() {
		binaries, err = findExecutables(extractedPath, toolName)
		if err != nil {
			return "", fmt.Errorf("no binary found in %s: %w", extractedPath, err)
		}
	} else {
		// Single extracted file: assume it is the binary.
		binaries = []string{extractedPath}
	}

	destination := "/usr/local/bin"
	for _, binaryPath := range binaries {
		if err := copyBinary(binaryPath, destination); err != nil {
			homeBin := filepath.Join(os.Getenv("HOME"), "bin")
			if err := os.MkdirAll(homeBin, 0755); err != nil {
				return "", fmt.Errorf("cannot create fallback bin directory: %w", err)
			}
			destination = homeBin
			if err := copyBinary(binaryPath, homeBin); err != nil {
				return "", fmt.Errorf("failed to copy binary to fallback location: %w", err)
			}
		}
	}

	return filepath.Join(destination, filepath.Base(binaries[0])), nil
}

// toolNameFromArchive derives a tool name from an archive path: strip the
// archive extension, then take the leading token ("ripgrep-14.1.0-x86_64..."
// becomes "ripgrep").
func toolNameFromArchive(path string) string {
	filename := filepath.Base(path)
	for _, ext := range archiveSuffixes {
		if strings.HasSuffix(filename, ext) {
			filename = strings.TrimSuffix(filename, ext)
			break
		}
	}
	parts := strings.FieldsFunc(filename, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) > 0 {
		return parts[0]
	}
	return filename
}

// ExtractArchive extracts src into dest and returns the top-level extracted
// path. The format is chosen by file extension.
func ExtractArchive(src, dest string) (string, error) {
	switch {
	case strings.HasSuffix(src, ".zip"):
		return extractZip(src, dest)
	case strings.HasSuffix(src, ".7z"):
		return extract7z(src, dest)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"):
		return extractTar(src, dest)
	default:
		return "", fmt.Errorf("unsupported archive format: %s", src)
	}
}

// extractTar handles plain and compressed tarballs.
func extractTar(src, dest string) (string, error) {
	logger.Debug("[DEBUG] Extracting %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	var topLevel string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		if topLevel == "" {
			topLevel = firstPathComponent(hdr.Name)
		}

		target := filepath.Join(dest, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", err
			}
			outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return "", err
			}
			outFile.Close()
		}
	}
	return filepath.Join(dest, topLevel), nil
}

func extractZip(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		if topLevel == "" {
			topLevel = firstPathComponent(f.Name)
		}
		target := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", err
		}
		outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}

func extract7z(src, dest string) (string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		if topLevel == "" {
			topLevel = firstPathComponent(f.Name)
		}
		target := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, f.Mode()); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", err
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		outFile, err := os.Create(target)
		if err != nil {
			rc.Close()
			return "", err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}

func firstPathComponent(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return name
}

// findExecutables walks a directory tree and returns executable files whose
// name starts with toolName. Permission bits decide in the common case; the
// `file` command is the fallback for archives that lose the exec bit.
func findExecutables(root, toolName string) ([]string, error) {
	var executables []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !strings.HasPrefix(filepath.Base(path), toolName) {
			return nil
		}

		mode := info.Mode()
		if mode.IsRegular() && mode.Perm()&0111 != 0 {
			logger.Debug("[DEBUG] Found executable (perm): %s\n", path)
			executables = append(executables, path)
			return nil
		}

		out, err := exec.Command("file", "--brief", path).Output()
		if err != nil {
			return nil
		}
		kind := strings.ToLower(string(out))
		if strings.Contains(kind, "executable") || strings.Contains(kind, "mach-o") || strings.Contains(kind, "elf") {
			logger.Debug("[DEBUG] Found executable (file): %s\n", path)
			executables = append(executables, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(executables) == 0 {
		return nil, fmt.Errorf("no executables found in %s", root)
	}
	return executables, nil
}

// copyBinary copies a file into dstDir with executable permissions.
func copyBinary(src, dstDir string) error {
	dst := filepath.Join(dstDir, filepath.Base(src))
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
