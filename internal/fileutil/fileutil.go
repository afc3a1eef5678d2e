package fileutil

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// hashChunkSize bounds memory while hashing large raw files.
const hashChunkSize = 1 << 20

// HashFile returns the lowercase hex SHA-256 digest of the file at path,
// streamed in 1 MiB chunks.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return HashReader(file)
}

// HashReader digests r the same way HashFile digests a file.
func HashReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CountDataLines returns the number of lines in the file minus the header line,
// never below zero. A trailing line without a newline still counts.
func CountDataLines(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, hashChunkSize)
	var lines int64
	var last byte = '\n'
	buf := make([]byte, 64*1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count lines: %w", err)
		}
	}
	if last != '\n' {
		lines++
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch. It returns the digest and size of the copied bytes.
func CopyFileVerified(src, dst string) (string, int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", 0, fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.CopyBuffer(multi, tee, make([]byte, hashChunkSize))
	if err != nil {
		_ = os.Remove(dst)
		return "", 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", 0, err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return "", 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return "", 0, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return hex.EncodeToString(dstHasher.Sum(nil)), written, nil
}

// WriteFileAtomic writes data to a uniquely named sibling temp file and renames
// it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := TempSibling(path)
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// TempSibling returns a unique temporary path in the same directory as path.
func TempSibling(path string) string {
	return path + ".tmp-" + uuid.NewString()
}
