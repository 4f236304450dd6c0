package lifecycle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractArchive unpacks a zip archive into dest. When every member
// shares a single top-level directory segment, that segment is stripped
// so dest receives the archive's contents rather than a nested wrapper
// folder. Archives with multiple top-level segments extract verbatim.
func extractArchive(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	root := commonRoot(reader.File)
	for _, file := range reader.File {
		rel := normalize(file.Name)
		if root != "" {
			rel = strings.TrimPrefix(rel, root+"/")
		}
		if rel == "" || rel == root {
			continue
		}
		if err := extractMember(file, dest, rel); err != nil {
			return err
		}
	}
	return nil
}

// commonRoot returns the single top-level directory segment shared by
// every archive member, or "" when the archive has multiple top-level
// segments or consists of a single bare file.
func commonRoot(files []*zip.File) string {
	root := ""
	nested := false
	for _, file := range files {
		name := normalize(file.Name)
		if name == "" {
			continue
		}
		seg, rest, found := strings.Cut(name, "/")
		if found && rest != "" || file.FileInfo().IsDir() {
			nested = true
		}
		if root == "" {
			root = seg
		} else if root != seg {
			return ""
		}
	}
	if !nested {
		return ""
	}
	return root
}

func extractMember(file *zip.File, dest, rel string) error {
	// Reject members that would escape the destination.
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return fmt.Errorf("archive member %q escapes destination", file.Name)
	}
	target := filepath.Join(dest, cleaned)

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	mode := file.Mode()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// normalize converts a member name to slash form without trailing slash.
func normalize(name string) string {
	return strings.Trim(strings.ReplaceAll(name, "\\", "/"), "/")
}
