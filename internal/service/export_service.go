package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/export"
	"f2fit/gym-manager/internal/metrics"
	"f2fit/gym-manager/internal/storage"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrUnknownExportEntity = errors.New("unknown export entity")
	ErrExportStorageOff    = errors.New("export storage is not configured")
)

// ExportRequest selects what to export. Columns override the entity defaults when set.
type ExportRequest struct {
	Entity  string
	Format  export.Format
	Search  string
	Columns []export.Column
	// Store uploads the file and returns a download link instead of the bytes.
	Store bool
}

type ExportResult struct {
	File        *export.File `json:"-"`
	FileName    string       `json:"fileName"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
}

var entityTitles = map[string]string{
	"members":       "Membres",
	"coaches":       "Coachs",
	"classes":       "Cours",
	"equipment":     "Équipements",
	"subscriptions": "Abonnements",
	"plans":         "Formules d'abonnement",
	"gyms":          "Salles",
}

var defaultColumns = map[string][]export.Column{
	"members": {
		{Header: "Nom", AccessorKey: "name"},
		{Header: "Email", AccessorKey: "email"},
		{Header: "Téléphone", AccessorKey: "phone"},
		{Header: "Abonnement", AccessorKey: "subscriptionState"},
		{Header: "Date d'inscription", AccessorKey: "createdAt"},
	},
	"coaches": {
		{Header: "Nom", AccessorKey: "name"},
		{Header: "Email", AccessorKey: "email"},
		{Header: "Téléphone", AccessorKey: "phone"},
		{Header: "Spécialités", AccessorKey: "specialties"},
	},
	"classes": {
		{Header: "Cours", AccessorKey: "name"},
		{Header: "Type", AccessorKey: "type"},
		{Header: "Coach", AccessorKey: "coachName"},
		{Header: "Date", AccessorKey: "date"},
		{Header: "Heure", AccessorKey: "time"},
		{Header: "Participants", AccessorKey: "participants"},
	},
	"equipment": {
		{Header: "Nom", AccessorKey: "name"},
		{Header: "Quantité", AccessorKey: "quantity"},
		{Header: "Statut", AccessorKey: "status"},
		{Header: "Dernière maintenance", AccessorKey: "lastMaintenance"},
	},
	"subscriptions": {
		{Header: "Membre", AccessorKey: "memberName"},
		{Header: "Formule", AccessorKey: "planName"},
		{Header: "Prix (FCFA)", AccessorKey: "price"},
		{Header: "Début", AccessorKey: "startDate"},
		{Header: "Fin", AccessorKey: "endDate"},
		{Header: "Statut", AccessorKey: "state"},
	},
	"plans": {
		{Header: "Nom", AccessorKey: "name"},
		{Header: "Prix (FCFA)", AccessorKey: "price"},
		{Header: "Durée (jours)", AccessorKey: "duration"},
		{Header: "Statut", AccessorKey: "status"},
	},
	"rapport-global": {
		{Header: "Métrique", AccessorKey: "metric"},
		{Header: "Valeur", AccessorKey: "value"},
	},
	"gyms": {
		{Header: "Salle", AccessorKey: "gymName"},
		{Header: "Administrateur", AccessorKey: "adminName"},
		{Header: "Email", AccessorKey: "email"},
		{Header: "Tarif", AccessorKey: "tariffName"},
		{Header: "Statut", AccessorKey: "status"},
		{Header: "Abonnement Expire Le", AccessorKey: "subscriptionEndDate"},
	},
}

type ExportService interface {
	// ExportGymData exports one collection of a gym.
	ExportGymData(ctx context.Context, gymID string, req ExportRequest) (*ExportResult, error)
	// ExportGyms exports the platform roster. req.Search filters it.
	ExportGyms(ctx context.Context, req ExportRequest) (*ExportResult, error)
	// ExportReport exports the platform report metrics of a period.
	ExportReport(ctx context.Context, period ReportPeriod, req ExportRequest) (*ExportResult, error)
}

type exportService struct {
	members       MemberService
	coaches       CoachService
	classes       ClassService
	equipment     EquipmentService
	subscriptions SubscriptionService
	plans         PlanService
	gyms          GymService
	reports       ReportService
	storage       storage.FileStorage // nil when S3 is not configured
	clock         domain.Clock
	log           *zap.Logger
}

// ExportSources groups the services an export reads from.
type ExportSources struct {
	Members       MemberService
	Coaches       CoachService
	Classes       ClassService
	Equipment     EquipmentService
	Subscriptions SubscriptionService
	Plans         PlanService
	Gyms          GymService
	Reports       ReportService
}

func NewExportService(src ExportSources, fileStorage storage.FileStorage, clock domain.Clock, log *zap.Logger) ExportService {
	return &exportService{
		members:       src.Members,
		coaches:       src.Coaches,
		classes:       src.Classes,
		equipment:     src.Equipment,
		subscriptions: src.Subscriptions,
		plans:         src.Plans,
		gyms:          src.Gyms,
		reports:       src.Reports,
		storage:       fileStorage,
		clock:         clock,
		log:           log,
	}
}

func (s *exportService) ExportGymData(ctx context.Context, gymID string, req ExportRequest) (*ExportResult, error) {
	rows, err := s.gymRows(ctx, gymID, req.Entity, req.Search)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, gymID, req, entityTitles[req.Entity], rows)
}

func (s *exportService) ExportGyms(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	req.Entity = "gyms"
	gyms, err := s.gyms.ListGyms(ctx, GymFilter{Search: req.Search})
	if err != nil {
		return nil, err
	}
	rows, err := toRows(gyms)
	if err != nil {
		return nil, err
	}
	for i, g := range gyms {
		rows[i]["subscriptionEndDate"] = g.SubscriptionEndDate
	}
	return s.render(ctx, "platform", req, entityTitles[req.Entity], rows)
}

func (s *exportService) ExportReport(ctx context.Context, period ReportPeriod, req ExportRequest) (*ExportResult, error) {
	req.Entity = "rapport-global"
	report, err := s.reports.PlatformReport(ctx, period)
	if err != nil {
		return nil, err
	}
	rows := []export.Row{
		{"metric": "Salles Actives", "value": report.ActiveGyms},
		{"metric": "Salles Désactivées", "value": report.DisabledGyms},
		{"metric": fmt.Sprintf("Nouvelles Salles (%s)", period), "value": report.NewGyms},
		{"metric": "Abonnements Expirés", "value": report.ExpiredSubscriptions},
	}
	return s.render(ctx, "platform", req, fmt.Sprintf("Rapport Global - Période: %s", period), rows)
}

func (s *exportService) gymRows(ctx context.Context, gymID, entity, search string) ([]export.Row, error) {
	switch entity {
	case "members":
		members, err := s.members.ListMembers(ctx, gymID, search, "")
		if err != nil {
			return nil, err
		}
		rows, err := toRows(members)
		if err != nil {
			return nil, err
		}
		for i, m := range members {
			rows[i]["createdAt"] = m.CreatedAt
		}
		return rows, nil
	case "coaches":
		coaches, err := s.coaches.ListCoaches(ctx, gymID, search)
		if err != nil {
			return nil, err
		}
		rows, err := toRows(coaches)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i]["specialties"] = strings.Join(coaches[i].Specialties, ", ")
		}
		return rows, nil
	case "classes":
		classes, err := s.classes.ListClasses(ctx, gymID, ClassFilter{Search: search})
		if err != nil {
			return nil, err
		}
		rows, err := toRows(classes)
		if err != nil {
			return nil, err
		}
		for i, c := range classes {
			rows[i]["participants"] = formatParticipants(c)
			rows[i]["date"] = c.Date
		}
		return rows, nil
	case "equipment":
		items, err := s.equipment.ListEquipment(ctx, gymID, search, "")
		if err != nil {
			return nil, err
		}
		rows, err := toRows(items)
		if err != nil {
			return nil, err
		}
		for i, e := range items {
			rows[i]["lastMaintenance"] = e.LastMaintenance
		}
		return rows, nil
	case "subscriptions":
		subs, err := s.subscriptions.ListSubscriptions(ctx, gymID, "")
		if err != nil {
			return nil, err
		}
		needle := strings.ToLower(strings.TrimSpace(search))
		filtered := subs[:0]
		for _, sub := range subs {
			if needle == "" || containsFold(needle, sub.MemberName, sub.PlanName) {
				filtered = append(filtered, sub)
			}
		}
		rows, err := toRows(filtered)
		if err != nil {
			return nil, err
		}
		for i, sub := range filtered {
			rows[i]["startDate"] = sub.StartDate
			rows[i]["endDate"] = sub.EndDate
		}
		return rows, nil
	case "plans":
		plans, err := s.plans.ListPlans(ctx, gymID)
		if err != nil {
			return nil, err
		}
		return toRows(plans)
	default:
		return nil, ErrUnknownExportEntity
	}
}

func (s *exportService) render(ctx context.Context, scope string, req ExportRequest, title string, rows []export.Row) (*ExportResult, error) {
	columns := req.Columns
	if len(columns) == 0 {
		columns = defaultColumns[req.Entity]
	}
	file, err := export.Render(req.Format, req.Entity, domain.Today(s.clock), export.Table{
		Title:   title,
		Columns: columns,
		Rows:    rows,
	})
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			return nil, invalid("%v", err)
		}
		return nil, err
	}
	metrics.RecordExport(string(req.Format))

	result := &ExportResult{File: file, FileName: file.Name}
	if !req.Store {
		return result, nil
	}
	if s.storage == nil {
		return nil, ErrExportStorageOff
	}

	key := storage.ExportKey(scope, file.Name)
	if err := s.storage.PutObject(ctx, key, file.ContentType, file.Data); err != nil {
		return nil, err
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	s.log.Info("Export stored", zap.String("key", key), zap.Int("rows", len(rows)))
	result.DownloadURL = url
	return result, nil
}

func formatParticipants(c domain.Class) string {
	return fmt.Sprintf("%d/%d", c.Enrolled, c.Capacity)
}

// toRows flattens records through their JSON form so accessors match API field names.
// Numbers are kept as json.Number so amounts render exactly.
func toRows[T any](items []T) ([]export.Row, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	rows := make([]export.Row, 0, len(items))
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
