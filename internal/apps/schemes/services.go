package schemes

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"gorm.io/gorm"
)

var ErrSchemeNotFound = apperr.NotFound("Scheme not found")

type SchemeService struct {
	db     *gorm.DB
	policy access.SchemePolicy
}

func NewSchemeService(db *gorm.DB, policy access.SchemePolicy) *SchemeService {
	return &SchemeService{db: db, policy: policy}
}

func (s *SchemeService) List(schemeType string) ([]GovScheme, error) {
	query := s.db.Order("id ASC")
	if schemeType != "" {
		query = query.Where("type = ?", schemeType)
	}
	list := []GovScheme{}
	if err := query.Find(&list).Error; err != nil {
		return nil, apperr.Internal("failed to list schemes", err)
	}
	return list, nil
}

func (s *SchemeService) Get(id uint) (*GovScheme, error) {
	var scheme GovScheme
	if err := s.db.First(&scheme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		return nil, apperr.Internal("failed to load scheme", err)
	}
	return &scheme, nil
}

func (s *SchemeService) Create(p access.Principal, req *SchemeRequest) (*GovScheme, error) {
	list, err := s.CreateBulk(p, []SchemeRequest{*req})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateBulk inserts all schemes or none.
func (s *SchemeService) CreateBulk(p access.Principal, reqs []SchemeRequest) ([]GovScheme, error) {
	if !s.policy.CanManageSchemes(p) {
		return nil, apperr.Forbidden("Only admins can create government schemes")
	}
	if len(reqs) == 0 {
		return nil, apperr.BadRequest("At least one scheme is required")
	}

	list := make([]GovScheme, 0, len(reqs))
	for i := range reqs {
		if err := validate(&reqs[i]); err != nil {
			return nil, err
		}
		list = append(list, fromRequest(&reqs[i]))
	}
	if err := s.db.Create(&list).Error; err != nil {
		return nil, apperr.Internal("failed to create schemes", err)
	}

	slog.Info("schemes created", "action", "scheme_create", "username", p.Name(), "count", len(list))
	return list, nil
}

func (s *SchemeService) Update(id uint, p access.Principal, req *SchemeRequest) (*GovScheme, error) {
	if !s.policy.CanManageSchemes(p) {
		return nil, apperr.Forbidden("Only admins can update government schemes")
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	scheme, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updated := fromRequest(req)
	scheme.SchemeName = updated.SchemeName
	scheme.DetailedDescription = updated.DetailedDescription
	scheme.Type = updated.Type
	scheme.URL = updated.URL
	if err := s.db.Save(scheme).Error; err != nil {
		return nil, apperr.Internal("failed to update scheme", err)
	}

	slog.Info("scheme updated", "action", "scheme_update", "username", p.Name(), "scheme_id", id)
	return scheme, nil
}

func (s *SchemeService) Delete(id uint, p access.Principal) error {
	if !s.policy.CanManageSchemes(p) {
		return apperr.Forbidden("Only admins can delete government schemes")
	}
	res := s.db.Delete(&GovScheme{}, id)
	if res.Error != nil {
		return apperr.Internal("failed to delete scheme", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSchemeNotFound
	}

	slog.Info("scheme deleted", "action", "scheme_delete", "username", p.Name(), "scheme_id", id)
	return nil
}

func validate(req *SchemeRequest) error {
	if strings.TrimSpace(req.SchemeName) == "" {
		return apperr.BadRequest("scheme_name is required")
	}
	if strings.TrimSpace(req.DetailedDescription) == "" {
		return apperr.BadRequest("detailed_description is required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return apperr.BadRequest("type is required")
	}
	if raw := strings.TrimSpace(req.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperr.BadRequest("url must be an absolute http(s) URL")
		}
	}
	return nil
}

func fromRequest(req *SchemeRequest) GovScheme {
	return GovScheme{
		SchemeName:          strings.TrimSpace(req.SchemeName),
		DetailedDescription: strings.TrimSpace(req.DetailedDescription),
		Type:                strings.TrimSpace(req.Type),
		URL:                 strings.TrimSpace(req.URL),
	}
}
