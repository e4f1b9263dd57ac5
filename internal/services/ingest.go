package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// IngestResult describes one rubric document loaded into the vector store.
type IngestResult struct {
	Path   string
	DocID  string
	Chunks int
	Stored int
	Err    error
}

// RubricIngester loads evaluation guideline documents into the vector store.
type RubricIngester interface {
	IngestFile(ctx context.Context, path string) IngestResult
	IngestDir(ctx context.Context, dir string) ([]IngestResult, error)
}

type rubricIngester struct {
	gemini    GeminiService
	qdrant    QdrantService
	pdfParser PDFParserService
	chunker   TextChunker
	log       *zap.Logger
}

func NewRubricIngester(gemini GeminiService, qdrant QdrantService, pdfParser PDFParserService, chunker TextChunker, log *zap.Logger) RubricIngester {
	if log == nil {
		log = zap.NewNop()
	}
	return &rubricIngester{
		gemini:    gemini,
		qdrant:    qdrant,
		pdfParser: pdfParser,
		chunker:   chunker,
		log:       log,
	}
}

// IngestDir ingests every supported file directly inside dir, in name order.
func (ri *rubricIngester) IngestDir(ctx context.Context, dir string) ([]IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := contentTypes[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			ri.log.Debug("skipping unsupported file", zap.String("file", entry.Name()))
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	results := make([]IngestResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, ri.IngestFile(ctx, path))
	}

	return results, nil
}

// IngestFile replaces any chunks previously stored for the file.
func (ri *rubricIngester) IngestFile(ctx context.Context, path string) IngestResult {
	result := IngestResult{Path: path, DocID: filepath.Base(path)}
	log := ri.log.With(zap.String("file", path))

	text, err := ri.readText(path)
	if err != nil {
		result.Err = err
		log.Error("failed to extract text", zap.Error(err))
		return result
	}

	chunks := ri.chunker.ChunkText(text, defaultChunkSize, defaultChunkOverlap)
	result.Chunks = len(chunks)

	if err := ri.qdrant.DeleteDocument(ctx, result.DocID); err != nil {
		result.Err = err
		log.Error("failed to remove previous chunks", zap.Error(err))
		return result
	}

	for i, chunk := range chunks {
		embedding, err := ri.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			result.Err = err
			log.Warn("failed to embed chunk", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}

		if err := ri.qdrant.UpsertDocument(ctx, result.DocID, DocTypeRubric, chunk, embedding); err != nil {
			result.Err = err
			log.Warn("failed to store chunk", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}
		result.Stored++
	}

	log.Info("document ingested", zap.Int("chunks", result.Chunks), zap.Int("stored", result.Stored))
	return result
}

func (ri *rubricIngester) readText(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		content, err := ri.pdfParser.ExtractTextWithMetaData(path)
		if err != nil {
			return "", err
		}
		ri.log.Debug("pdf extracted", zap.String("file", path), zap.Int("pages", content.PageCount))
		return content.Text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeText(path, data, ri.pdfParser)
}
