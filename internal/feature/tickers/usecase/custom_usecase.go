package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"metals_backend/internal/feature/tickers/domain/entity"
)

// CustomInstrumentRepository abstracts custom instrument persistence.
type CustomInstrumentRepository interface {
	Create(ctx context.Context, instrument *entity.CustomInstrument) error
	List(ctx context.Context) ([]entity.CustomInstrument, error)
	// FindByName returns (nil, nil) when no row matches.
	FindByName(ctx context.Context, name string) (*entity.CustomInstrument, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uint) (bool, error)
}

// spreadDefinition is the two-leg form: price of Legs[0] minus Legs[1].
type spreadDefinition struct {
	Legs []string `json:"legs"`
}

// weightedIndexDefinition combines N symbols with weights.
type weightedIndexDefinition struct {
	Components []struct {
		Symbol string  `json:"symbol"`
		Weight float64 `json:"weight"`
	} `json:"components"`
}

// CustomUsecase manages operator-defined derived instruments. They are never
// reconciled against the terminal.
type CustomUsecase struct {
	repo CustomInstrumentRepository
}

// NewCustomUsecase creates a CustomUsecase with the given repository.
func NewCustomUsecase(repo CustomInstrumentRepository) *CustomUsecase {
	return &CustomUsecase{repo: repo}
}

// Add validates and stores a custom instrument definition.
func (u *CustomUsecase) Add(ctx context.Context, name, instrumentType string, definition json.RawMessage) (*entity.CustomInstrument, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if err := validateDefinition(instrumentType, definition); err != nil {
		return nil, err
	}

	if existing, err := u.repo.FindByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, ErrInstrumentExists
	}

	instrument := &entity.CustomInstrument{
		Name:       name,
		Type:       instrumentType,
		Definition: string(definition),
	}
	if err := u.repo.Create(ctx, instrument); err != nil {
		return nil, err
	}
	return instrument, nil
}

// List returns all custom instruments.
func (u *CustomUsecase) List(ctx context.Context) ([]entity.CustomInstrument, error) {
	return u.repo.List(ctx)
}

// Remove deletes a custom instrument by identity.
func (u *CustomUsecase) Remove(ctx context.Context, id uint) error {
	deleted, err := u.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTickerNotFound
	}
	return nil
}

// validateDefinition checks the definition blob against the declared type.
// The blob stays opaque in storage; only its shape is enforced here.
func validateDefinition(instrumentType string, definition json.RawMessage) error {
	switch instrumentType {
	case entity.InstrumentTypeSpread:
		var def spreadDefinition
		if err := json.Unmarshal(definition, &def); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		if len(def.Legs) != 2 {
			return fmt.Errorf("%w: spread needs exactly two legs", ErrInvalidDefinition)
		}
	case entity.InstrumentTypeWeightedIndex:
		var def weightedIndexDefinition
		if err := json.Unmarshal(definition, &def); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		if len(def.Components) == 0 {
			return fmt.Errorf("%w: weighted index needs at least one component", ErrInvalidDefinition)
		}
		for _, c := range def.Components {
			if c.Symbol == "" || c.Weight == 0 {
				return fmt.Errorf("%w: component needs symbol and non-zero weight", ErrInvalidDefinition)
			}
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDefinition, instrumentType)
	}
	return nil
}
