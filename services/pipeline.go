package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"celluiq/config"
	"celluiq/events"
	"celluiq/models"
	"celluiq/providers"
	"celluiq/storage"
)

// Document ist ein hochgeladener Befund.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PipelineResult beschreibt das Ergebnis eines Pipeline-Laufs.
type PipelineResult struct {
	Stage     Stage                `json:"stage"`
	BloodWork *models.BloodWork    `json:"blood_work,omitempty"`
	Markers   []models.BloodMarker `json:"markers"`
	// Marker ohne Katalogeintrag, trotzdem gespeichert mit Status other
	Unmatched []string `json:"unmatched,omitempty"`
}

var testDateLayouts = []string{"2006-01-02", "02.01.2006", "02.01.06", time.RFC3339, "2006/01/02"}

// Pipeline verarbeitet hochgeladene Befunde: Upload, Extraktion, Abgleich mit dem
// Referenzkatalog, Klassifizierung und Speicherung.
type Pipeline struct {
	Documents  DocumentStore
	BloodWork  BloodWorkStore
	Markers    MarkerWriter
	Catalog    CatalogProvider
	Extractor  providers.Extractor
	Profiles   ProfileReader
	Events     events.Publisher
	Classifier Classifier
	Workers    int
	Logger     *zap.Logger

	now func() time.Time
}

// NewPipeline erstellt eine neue Pipeline.
func NewPipeline(cfg *config.Config, documents DocumentStore, bloodWork BloodWorkStore, markers MarkerWriter,
	catalog CatalogProvider, extractor providers.Extractor, profiles ProfileReader, publisher events.Publisher, logger *zap.Logger) *Pipeline {
	workers := cfg.PipelineWorkers
	if workers < 1 {
		workers = 1
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Pipeline{
		Documents:  documents,
		BloodWork:  bloodWork,
		Markers:    markers,
		Catalog:    catalog,
		Extractor:  extractor,
		Profiles:   profiles,
		Events:     publisher,
		Classifier: NewClassifier(cfg.StatusPolicy),
		Workers:    workers,
		Logger:     logger,
		now:        time.Now,
	}
}

// Run lädt das Dokument hoch und verarbeitet es direkt.
func (p *Pipeline) Run(ctx context.Context, doc Document, userID string, gender models.Gender) (*PipelineResult, error) {
	bw, err := p.Upload(ctx, doc, userID)
	if err != nil {
		return &PipelineResult{Stage: StageFailed}, err
	}
	return p.Process(ctx, bw, gender)
}

// Upload speichert das Dokument in S3 und legt einen BloodWork-Eintrag mit Status pending an.
func (p *Pipeline) Upload(ctx context.Context, doc Document, userID string) (*models.BloodWork, error) {
	if userID == "" || len(doc.Data) == 0 {
		return nil, fmt.Errorf("%w: document and user are required", ErrInvalidInput)
	}
	log := p.Logger.With(zap.String("user_id", userID), zap.String("file_name", doc.FileName))

	key := storage.DocumentKey(userID, doc.FileName, p.clock())
	if err := p.Documents.Upload(ctx, key, doc.Data, doc.ContentType); err != nil {
		log.Error("Upload des Befunds fehlgeschlagen", zap.Error(err))
		pipelineRunsTotal.WithLabelValues("upload_failed").Inc()
		return nil, &StageError{Stage: StageUploading, Err: fmt.Errorf("%w: %w", ErrUploadFailed, err)}
	}

	bw := &models.BloodWork{
		UserID:      userID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		StorageKey:  key,
		Status:      models.BloodWorkPending,
	}
	if err := p.BloodWork.Create(ctx, bw); err != nil {
		log.Error("BloodWork konnte nicht angelegt werden", zap.Error(err))
		pipelineRunsTotal.WithLabelValues("upload_failed").Inc()
		return nil, &StageError{Stage: StageUploading, Err: fmt.Errorf("%w: %w", ErrUploadFailed, err)}
	}
	log.Info("Befund hochgeladen", zap.String("blood_work_id", bw.ID), zap.String("key", key))
	return bw, nil
}

// Process extrahiert, klassifiziert und speichert die Marker eines hochgeladenen Befunds.
func (p *Pipeline) Process(ctx context.Context, bw *models.BloodWork, gender models.Gender) (*PipelineResult, error) {
	log := p.Logger.With(zap.String("user_id", bw.UserID), zap.String("blood_work_id", bw.ID))
	result := &PipelineResult{Stage: StageExtracting, BloodWork: bw}

	bw.Status = models.BloodWorkExtracting
	bw.ErrorMessage = ""
	p.save(ctx, bw, log)

	url, err := p.Documents.PresignURL(ctx, bw.StorageKey)
	if err != nil {
		return p.fail(ctx, result, StageExtracting, fmt.Errorf("%w: presign: %w", ErrExtractionFailed, err), log)
	}
	bw.FileURL = url

	timer := prometheus.NewTimer(extractionDuration)
	extraction, err := p.Extractor.Extract(ctx, providers.ExtractionRequest{
		FileURL:     url,
		ContentType: bw.ContentType,
		JSONSchema:  providers.BloodMarkerSchema,
	})
	timer.ObserveDuration()
	if err != nil {
		return p.fail(ctx, result, StageExtracting, fmt.Errorf("%w: %w", ErrExtractionFailed, err), log)
	}
	if extraction == nil {
		extraction = &providers.ExtractionResult{}
	}
	if len(extraction.Raw) > 0 {
		bw.AnalysisJSON = datatypes.JSON(extraction.Raw)
	} else {
		bw.AnalysisJSON = rawAnalysis(extraction.Output)
	}

	if extraction.Status != providers.StatusSuccess || len(extraction.Output.Markers) == 0 {
		log.Info("Keine Marker im Befund gefunden", zap.String("status", extraction.Status))
		return p.noMarkers(ctx, result, log)
	}

	result.Stage = StageMatching
	catalog, err := p.Catalog.References(ctx)
	if err != nil {
		return p.fail(ctx, result, StageMatching, err, log)
	}

	markers, unmatched := p.BuildMarkers(extraction.Output, bw.UserID, gender, catalog)
	if len(markers) == 0 {
		log.Info("Extraktion enthielt nur Marker ohne Namen")
		return p.noMarkers(ctx, result, log)
	}
	for i := range markers {
		markers[i].BloodWorkID = &bw.ID
	}
	result.Unmatched = unmatched
	if len(unmatched) > 0 {
		unmatchedMarkersTotal.Add(float64(len(unmatched)))
		log.Info("Marker ohne Referenz", zap.Strings("markers", unmatched))
	}

	if err := p.Markers.BulkCreate(ctx, markers); err != nil {
		return p.fail(ctx, result, StageFailed, fmt.Errorf("%w: %w", ErrPersistFailed, err), log)
	}
	markersPersistedTotal.WithLabelValues(models.SourceUpload).Add(float64(len(markers)))

	now := p.clock()
	bw.Status = models.BloodWorkProcessed
	bw.MarkerCount = len(markers)
	bw.ProcessedAt = &now
	p.save(ctx, bw, log)

	if err := p.Events.PublishMarkersChanged(ctx, events.MarkersChanged{
		UserID:      bw.UserID,
		BloodWorkID: bw.ID,
		Source:      models.SourceUpload,
		MarkerCount: len(markers),
		OccurredAt:  now,
	}); err != nil {
		log.Warn("MarkersChanged-Event konnte nicht veröffentlicht werden", zap.Error(err))
	}

	pipelineRunsTotal.WithLabelValues("persisted").Inc()
	log.Info("Befund verarbeitet", zap.Int("markers", len(markers)), zap.Int("unmatched", len(unmatched)))
	result.Stage = StagePersisted
	result.Markers = markers
	return result, nil
}

// BuildMarkers wandelt die Rohdaten der Extraktion in klassifizierte Marker um.
// Marker ohne verwertbaren Messwert werden übersprungen. Gibt zusätzlich die Namen der
// Marker ohne Katalogeintrag zurück.
func (p *Pipeline) BuildMarkers(out providers.ExtractionOutput, userID string, gender models.Gender, catalog []models.ReferenceEntry) ([]models.BloodMarker, []string) {
	testDate := parseTestDate(out.TestDate, p.clock())

	markers := make([]models.BloodMarker, 0, len(out.Markers))
	var unmatched []string
	for _, raw := range out.Markers {
		name := strings.TrimSpace(raw.MarkerName)
		if name == "" {
			continue
		}
		if !raw.Value.Valid() {
			invalidValuesTotal.Inc()
			p.Logger.Warn("Marker ohne verwertbaren Messwert übersprungen", zap.String("marker", name))
			continue
		}
		ref := MatchReference(name, gender, catalog)
		if ref == nil {
			unmatched = append(unmatched, name)
		}
		m := classifyMarker(p.Classifier, name, float64(raw.Value), raw.Unit, ref, raw.ReferenceMin.Float(), raw.ReferenceMax.Float())
		m.UserID = userID
		m.Source = models.SourceUpload
		m.TestDate = testDate
		markers = append(markers, m)
	}
	return markers, unmatched
}

// classifyMarker rechnet den Wert in die Referenzeinheit um und stuft ihn ein.
// Ohne bekannte Umrechnung bleibt die Dokumenteinheit erhalten und der Marker wird als
// unit_unverified markiert.
func classifyMarker(c Classifier, name string, value float64, unit string, ref *models.ReferenceEntry, printedMin, printedMax *float64) models.BloodMarker {
	m := models.BloodMarker{
		MarkerName:    name,
		Value:         value,
		Unit:          unit,
		OriginalValue: value,
		OriginalUnit:  unit,
		Category:      models.CategoryOther,
	}
	if ref == nil {
		r := ResolveOptimalRange(nil, printedMin, printedMax)
		m.OptimalMin, m.OptimalMax = r.Min, r.Max
		m.Status = models.StatusOther
		return m
	}

	refID := ref.ID
	m.ReferenceID = &refID
	m.MarkerName = ref.MarkerName
	if ref.Category != "" {
		m.Category = ref.Category
	}

	switch {
	case unit == "":
		m.Unit = ref.Unit
	case ref.Unit == "":
	case UnitsEquivalent(unit, ref.Unit):
		m.Unit = ref.Unit
	default:
		conv := ConvertUnitDetailed(value, ref.MarkerName, unit, ref.Unit)
		if !conv.Known {
			m.UnitUnverified = true
			unverifiedUnitsTotal.Inc()
			break
		}
		m.Value = conv.Value
		m.Unit = ref.Unit
		m.UnitConverted = conv.Converted
		// gedruckte Grenzen sind in der Dokumenteinheit
		if printedMin != nil {
			v := ConvertUnit(*printedMin, ref.MarkerName, unit, ref.Unit)
			printedMin = &v
		}
		if printedMax != nil {
			v := ConvertUnit(*printedMax, ref.MarkerName, unit, ref.Unit)
			printedMax = &v
		}
	}

	r := ResolveOptimalRange(ref, printedMin, printedMax)
	m.OptimalMin, m.OptimalMax = r.Min, r.Max
	m.Status = c.ClassifyRange(m.Value, EffectiveRange(ref))
	return m
}

// ProcessPending verarbeitet bis zu limit wartende Befunde mit begrenzter Parallelität.
func (p *Pipeline) ProcessPending(ctx context.Context, limit int) (int, error) {
	pending, err := p.BloodWork.ListPending(ctx, limit)
	if err != nil {
		p.Logger.Error("Fehler beim Laden wartender Befunde", zap.Error(err))
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	p.Logger.Info("Verarbeite wartende Befunde", zap.Int("count", len(pending)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	semaphore := make(chan struct{}, p.Workers)

	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		semaphore <- struct{}{}

		go func(bw models.BloodWork) {
			defer wg.Done()
			defer func() { <-semaphore }()

			gender := userGender(ctx, p.Profiles, bw.UserID, p.Logger)
			_, err := p.Process(ctx, &bw, gender)
			if err != nil && !errors.Is(err, ErrNoMarkersFound) {
				return
			}
			mu.Lock()
			processed++
			mu.Unlock()
		}(pending[i])
	}
	wg.Wait()

	return processed, ctx.Err()
}

func (p *Pipeline) noMarkers(ctx context.Context, result *PipelineResult, log *zap.Logger) (*PipelineResult, error) {
	result.BloodWork.Status = models.BloodWorkNoMarkers
	result.BloodWork.MarkerCount = 0
	p.save(ctx, result.BloodWork, log)
	pipelineRunsTotal.WithLabelValues("no_markers").Inc()
	result.Stage = StageIdle
	return result, ErrNoMarkersFound
}

func (p *Pipeline) fail(ctx context.Context, result *PipelineResult, stage Stage, err error, log *zap.Logger) (*PipelineResult, error) {
	log.Error("Pipeline fehlgeschlagen", zap.String("stage", string(stage)), zap.Error(err))
	result.BloodWork.Status = models.BloodWorkFailed
	result.BloodWork.ErrorMessage = err.Error()
	p.save(ctx, result.BloodWork, log)
	pipelineRunsTotal.WithLabelValues("failed").Inc()
	result.Stage = StageFailed
	return result, &StageError{Stage: stage, Err: err}
}

// save schreibt den Status des Befunds; Fehler werden nur geloggt.
func (p *Pipeline) save(ctx context.Context, bw *models.BloodWork, log *zap.Logger) {
	if err := p.BloodWork.Save(ctx, bw); err != nil {
		log.Warn("BloodWork-Status konnte nicht gespeichert werden", zap.String("status", string(bw.Status)), zap.Error(err))
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// parseTestDate liest das Befunddatum; ohne lesbares Datum gilt der heutige Tag.
func parseTestDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range testDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// rawAnalysis serialisiert die Extraktion, falls der Dienst keine Rohantwort liefert.
func rawAnalysis(out providers.ExtractionOutput) datatypes.JSON {
	b, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
