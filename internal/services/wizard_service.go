package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/cache"
	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/wizard"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
	"github.com/vsconnecto/vsconnecto-api/pkg/storage"
	"github.com/vsconnecto/vsconnecto-api/pkg/trigger"
)

var (
	// ErrNoWizardSession is returned when the caller has no wizard in progress
	ErrNoWizardSession = apperrors.NotFoundError("profile wizard session")
	// ErrStorageDisabled is returned when document uploads are not configured
	ErrStorageDisabled = errors.New("document storage is not configured")
)

const profileCompletedEvent = "profile_completed"

// WizardService runs profile wizards, one per user, and persists them through a ProfileStore
type WizardService struct {
	sessions  *cache.WizardStore
	profiles  ProfileStore
	documents DocumentStorage
	notifier  *trigger.Notifier
}

// NewWizardService creates a wizard service. documents and notifier may be nil.
func NewWizardService(sessions *cache.WizardStore, profiles ProfileStore, documents DocumentStorage, notifier *trigger.Notifier) *WizardService {
	return &WizardService{
		sessions:  sessions,
		profiles:  profiles,
		documents: documents,
		notifier:  notifier,
	}
}

// Start replaces any wizard the user has with a new one. In edit mode the draft is seeded from
// the stored profile; if that read fails the wizard starts empty and the snapshot says so.
func (s *WizardService) Start(ctx context.Context, session *models.UserSession, edit bool) (wizard.Snapshot, error) {
	if session == nil || session.UserID == "" {
		return wizard.Snapshot{}, apperrors.ErrUnauthorized
	}

	var ctrl *wizard.Controller
	mode := "new"

	if edit {
		mode = "edit"
		existing, err := s.profiles.GetProfile(ctx, session)
		if err != nil {
			metrics.WizardSeedFailures.Inc()
			logger.Warn("Failed to load profile for edit, starting empty wizard",
				zap.String("user_id", session.UserID),
				zap.Error(err))
			ctrl = wizard.Initialize(session.Role, nil)
			ctrl.MarkSeedFailed()
		} else {
			ctrl = wizard.Initialize(session.Role, existing)
		}
	} else {
		ctrl = wizard.Initialize(session.Role, nil)
	}

	s.sessions.Put(session.UserID, ctrl)
	metrics.WizardSessionsStarted.WithLabelValues(string(session.Role), mode).Inc()

	snap := ctrl.Snapshot()
	logger.Info("Profile wizard started",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)),
		zap.String("mode", mode),
		zap.String("session_id", snap.SessionID))

	return snap, nil
}

// State returns the caller's wizard
func (s *WizardService) State(session *models.UserSession) (wizard.Snapshot, error) {
	ctrl, err := s.controller(session)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

// Submit validates data as the input of step. On the last step the draft is persisted.
func (s *WizardService) Submit(ctx context.Context, session *models.UserSession, step wizard.Step, data []byte) (wizard.Snapshot, error) {
	ctrl, err := s.controller(session)
	if err != nil {
		return wizard.Snapshot{}, err
	}

	input, err := wizard.DecodeInput(step, data)
	if err != nil {
		metrics.WizardStepSubmissions.WithLabelValues(string(step), "invalid").Inc()
		return wizard.Snapshot{}, err
	}

	persister := wizard.PersisterFunc(func(ctx context.Context, draft *models.ProfileDraft) (*models.User, error) {
		return s.profiles.UpdateProfile(ctx, session, draft.ToUpdateRequest())
	})

	completed, err := ctrl.Submit(ctx, persister, input)
	if err != nil {
		status := submissionStatus(err)
		metrics.WizardStepSubmissions.WithLabelValues(string(step), status).Inc()
		if status == "persist_error" {
			metrics.WizardCompletions.WithLabelValues(string(session.Role), "error").Inc()
			logger.LogError(ctx, err, "Failed to save completed profile", zap.String("user_id", session.UserID))
		}
		return wizard.Snapshot{}, err
	}

	if docs, ok := input.(*wizard.DocumentsInput); ok && docs.Empty() {
		metrics.WizardDocumentsSkipped.Inc()
	}

	if !completed {
		metrics.WizardStepSubmissions.WithLabelValues(string(step), "success").Inc()
		return ctrl.Snapshot(), nil
	}

	metrics.WizardStepSubmissions.WithLabelValues(string(step), "success").Inc()
	metrics.WizardCompletions.WithLabelValues(string(session.Role), "success").Inc()
	snap := ctrl.Snapshot()
	logger.Info("Profile wizard completed",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)),
		zap.String("session_id", snap.SessionID))

	s.notifier.CallAsync(ctx, trigger.Event{
		Name:   profileCompletedEvent,
		UserID: session.UserID,
		Role:   string(session.Role),
	})

	s.sessions.Delete(session.UserID)
	return snap, nil
}

// Back moves the caller's wizard one step back
func (s *WizardService) Back(session *models.UserSession) (wizard.Snapshot, error) {
	ctrl, err := s.controller(session)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	if err := ctrl.Retreat(); err != nil {
		return wizard.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

// Cancel discards the caller's wizard and its draft
func (s *WizardService) Cancel(session *models.UserSession) {
	if session == nil {
		return
	}
	s.sessions.Delete(session.UserID)
	logger.Debug("Profile wizard discarded", zap.String("user_id", session.UserID))
}

// UploadDocument stores a provider document and returns its URL. The URL is submitted
// afterwards through the Documents step; the draft is not changed here.
func (s *WizardService) UploadDocument(ctx context.Context, session *models.UserSession, req *models.UploadDocumentRequest) (string, error) {
	if session == nil || session.UserID == "" {
		return "", apperrors.ErrUnauthorized
	}
	if session.Role != models.RoleProvider {
		return "", apperrors.AccessDeniedError("only providers upload documents")
	}
	if s.documents == nil {
		return "", ErrStorageDisabled
	}

	kind, ok := storage.ParseDocumentKind(req.Kind)
	if !ok {
		return "", apperrors.InvalidInputError("kind", "unknown document kind")
	}
	if err := storage.ValidateDocumentType(req.ContentType); err != nil {
		metrics.DocumentUploads.WithLabelValues(string(kind), "invalid").Inc()
		return "", apperrors.InvalidInputError("contentType", err.Error())
	}

	data, err := decodeBase64(req.Data)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(string(kind), "invalid").Inc()
		return "", apperrors.InvalidInputError("data", err.Error())
	}
	if err := storage.ValidateDocumentSize(int64(len(data))); err != nil {
		metrics.DocumentUploads.WithLabelValues(string(kind), "invalid").Inc()
		return "", apperrors.InvalidInputError("data", err.Error())
	}

	url, err := s.documents.UploadDocument(ctx, session.UserID, kind, bytes.NewReader(data), int64(len(data)), req.ContentType)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(string(kind), "error").Inc()
		return "", &apperrors.UpstreamError{Service: "object_storage", Message: "Failed to upload document", Err: err}
	}

	metrics.DocumentUploads.WithLabelValues(string(kind), "success").Inc()
	logger.Info("Document uploaded",
		zap.String("user_id", session.UserID),
		zap.String("kind", string(kind)),
		zap.String("file_name", req.FileName))

	return url, nil
}

func (s *WizardService) controller(session *models.UserSession) (*wizard.Controller, error) {
	if session == nil || session.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	ctrl, ok := s.sessions.Get(session.UserID)
	if !ok {
		return nil, ErrNoWizardSession
	}
	return ctrl, nil
}

func submissionStatus(err error) string {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, wizard.ErrStepMismatch):
		return "step_mismatch"
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		return "in_flight"
	case errors.Is(err, wizard.ErrCompleted):
		return "completed"
	case errors.Is(err, wizard.ErrNotLastStep):
		return "not_last_step"
	default:
		return "persist_error"
	}
}

// decodeBase64 accepts raw base64 or a data URI (data:application/pdf;base64,...)
func decodeBase64(raw string) ([]byte, error) {
	if strings.HasPrefix(raw, "data:") {
		_, payload, found := strings.Cut(raw, ",")
		if !found {
			return nil, fmt.Errorf("invalid data URI format")
		}
		raw = payload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return data, nil
}
