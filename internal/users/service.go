package users

import (
	"context"
	"errors"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/crud"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/models"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
)

var (
	ErrCredentialsRequired = errors.New("user email and password required")
	ErrUserNotFound        = errors.New("user not found")
)

// Options is the field configuration of the user resource.
var Options = crud.Options{
	Exclude:    []string{models.FieldPassword},
	Searchable: []string{models.FieldUsername, models.FieldEmail},
}

// Service encapsulates user-related business logic: the generic CRUD
// operations plus password hashing and credential verification.
type Service struct {
	repo   UserRepository
	crud   *crud.Service[models.User]
	hasher Hasher
}

func NewService(r UserRepository, h Hasher) *Service {
	return &Service{repo: r, crud: crud.New(r, Options), hasher: h}
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.crud.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, req pagination.Request) (crud.Page[models.User], error) {
	return s.crud.Search(ctx, req)
}

// Create hashes the password before storing. u is not modified.
func (s *Service) Create(ctx context.Context, u *models.User) (*models.User, error) {
	doc, err := s.hashed(u)
	if err != nil {
		return nil, err
	}
	return s.crud.Create(ctx, doc)
}

func (s *Service) CreateMany(ctx context.Context, us []*models.User) ([]models.User, error) {
	docs := make([]*models.User, 0, len(us))
	for _, u := range us {
		doc, err := s.hashed(u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return s.crud.CreateMany(ctx, docs)
}

func (s *Service) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Password != nil {
		h, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &h
	}
	return s.crud.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) (*models.User, error) {
	return s.crud.Delete(ctx, id)
}

func (s *Service) DeleteMany(ctx context.Context, ids []string) (store.BatchResult, error) {
	return s.crud.DeleteMany(ctx, ids)
}

// Verify looks the user up by email and compares the password against the
// stored hash. A wrong password yields false without an error.
func (s *Service) Verify(ctx context.Context, c models.Credentials) (bool, error) {
	if c.Email == "" || c.Password == "" {
		return false, ErrCredentialsRequired
	}
	found, err := s.repo.Find(ctx,
		store.Filter{Where: []store.Eq{{Field: models.FieldEmail, Value: c.Email}}},
		store.FindOptions{Limit: 1},
	)
	if err != nil {
		return false, err
	}
	if len(found) == 0 {
		return false, ErrUserNotFound
	}
	return s.hasher.Compare(found[0].Password, c.Password)
}

func (s *Service) hashed(u *models.User) (*models.User, error) {
	doc := *u
	doc.Self = ""
	if doc.Password != "" {
		h, err := s.hasher.Hash(doc.Password)
		if err != nil {
			return nil, err
		}
		doc.Password = h
	}
	return &doc, nil
}
