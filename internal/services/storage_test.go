package services

import (
	"errors"
	"testing"

	"alfredoptarigan/resume-evaluator/internal/config"
)

type stubPDFParser struct {
	text string
	err  error
}

func (s stubPDFParser) ExtractText(string) (string, error) {
	return s.text, s.err
}

func (s stubPDFParser) ExtractTextFromBytes([]byte) (string, error) {
	return s.text, s.err
}

func (s stubPDFParser) ExtractTextWithMetaData(path string) (*PDFContent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &PDFContent{Text: s.text, PageCount: 1, FilePath: path}, nil
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prefix   string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "resume", prefix: PrefixResumes, filename: "jane_doe.pdf", want: "resumes/id-1/jane_doe.pdf"},
		{name: "job without slash", prefix: "jobs", filename: "backend.md", want: "jobs/id-1/backend.md"},
		{name: "strips client directories", prefix: PrefixResumes, filename: `C:\Users\me\cv.TXT`, want: "resumes/id-1/cv.TXT"},
		{name: "strips traversal", prefix: PrefixResumes, filename: "../../etc/cv.txt", want: "resumes/id-1/cv.txt"},
		{name: "unsupported extension", prefix: PrefixResumes, filename: "cv.docx", wantErr: true},
		{name: "empty name", prefix: PrefixResumes, filename: "  ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ObjectKey(tt.prefix, "id-1", tt.filename)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFile) {
					t.Fatalf("expected ErrUnsupportedFile, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()

	text, err := DecodeText("resumes/a/cv.txt", []byte("Jane Doe\nGo"), nil)
	if err != nil || text != "Jane Doe\nGo" {
		t.Fatalf("unexpected text result %q, %v", text, err)
	}

	text, err = DecodeText("resumes/a/cv.PDF", []byte("%PDF"), stubPDFParser{text: "  Jane \n\n Doe  "})
	if err != nil || text != "Jane\nDoe" {
		t.Fatalf("unexpected pdf result %q, %v", text, err)
	}

	if _, err := DecodeText("resumes/a/cv.pdf", []byte("%PDF"), stubPDFParser{err: errors.New("corrupt")}); err == nil {
		t.Fatalf("expected pdf extraction error")
	}

	if _, err := DecodeText("resumes/a/cv.txt", []byte{0xff, 0xfe, 0xfd}, nil); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile for invalid UTF-8, got %v", err)
	}
}

func TestNewStorageService(t *testing.T) {
	t.Parallel()

	svc, err := NewStorageService(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "resumes",
	}, NewPDFParserService())
	if err != nil {
		t.Fatalf("NewStorageService returned error: %v", err)
	}
	if svc == nil {
		t.Fatalf("expected non-nil service")
	}
}
