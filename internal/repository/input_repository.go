package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/maheshrc27/reelpost/internal/models"
)

// ErrInputMissing is returned when a required upstream file does not exist.
var ErrInputMissing = errors.New("required input file missing")

type InputRepository interface {
	LoadPlan() (*models.PostingPlan, error)
	LoadMetadata() ([]models.VideoMetadata, error)
	LoadURLMap() (models.VideoURLMap, error)
	SaveMetadata(videos []models.VideoMetadata) error
	SaveURLMap(urls models.VideoURLMap) error
}

type inputRepository struct {
	planPath     string
	metadataPath string
	urlMapPath   string
}

func NewInputRepository(planPath, metadataPath, urlMapPath string) InputRepository {
	return &inputRepository{
		planPath:     planPath,
		metadataPath: metadataPath,
		urlMapPath:   urlMapPath,
	}
}

func (r *inputRepository) LoadPlan() (*models.PostingPlan, error) {
	var plan models.PostingPlan
	if err := readJSON(r.planPath, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *inputRepository) LoadMetadata() ([]models.VideoMetadata, error) {
	var videos []models.VideoMetadata
	if err := readJSON(r.metadataPath, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// LoadURLMap returns an empty map when the file does not exist.
func (r *inputRepository) LoadURLMap() (models.VideoURLMap, error) {
	urls := models.VideoURLMap{}
	err := readJSON(r.urlMapPath, &urls)
	if errors.Is(err, ErrInputMissing) {
		return models.VideoURLMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *inputRepository) SaveMetadata(videos []models.VideoMetadata) error {
	return writeJSON(r.metadataPath, videos)
}

func (r *inputRepository) SaveURLMap(urls models.VideoURLMap) error {
	return writeJSON(r.urlMapPath, urls)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputMissing, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}
