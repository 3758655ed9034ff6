package order

import (
	"context"
	"fmt"
	"log"
)

// Service is the single orchestration entry point shared by the HTTP and
// queue adapters, so an order gets the same treatment no matter how it
// arrived.
type Service struct {
	repo Repository
	pub  Publisher
}

func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// ProcessReceived maps the raw create payload to a transient order, rejects
// duplicates by external id and hands off to ProcessCore.
//
// The duplicate check and the later insert are two separate store calls; two
// concurrent submissions with the same external id can both pass the check.
// Duplicate suppression is best effort, not a uniqueness guarantee.
func (s *Service) ProcessReceived(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	o := toDomain(req)

	exists, err := s.repo.ExistsByExternalID(ctx, o.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("duplicate check for %q: %w", o.ExternalID, err)
	}
	if exists {
		log.Printf("[order] rejected duplicate external_id=%s", o.ExternalID)
		return nil, ErrDuplicate
	}
	return s.ProcessCore(ctx, o)
}

// ProcessCore runs the state machine: compute the total, persist as
// PROCESSING, persist again as PROCESSED, then publish the finalized order.
// The two saves are sequential and not atomic together; a crash between them
// leaves the order durably in PROCESSING, which is the accepted marker that
// it was ingested but never finalized.
func (s *Service) ProcessCore(ctx context.Context, o *Order) (*Order, error) {
	o.Total = CalculateTotal(o)
	o.Status = StatusProcessing

	saved, err := s.repo.Save(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("save order external_id=%s: %w", o.ExternalID, err)
	}
	log.Printf("[order] id=%d external_id=%s saved status=%s", saved.ID, saved.ExternalID, saved.Status)

	saved.Status = StatusProcessed
	final, err := s.repo.Save(ctx, saved)
	if err != nil {
		return nil, fmt.Errorf("finalize order id=%d: %w", saved.ID, err)
	}
	log.Printf("[order] id=%d external_id=%s saved status=%s", final.ID, final.ExternalID, final.Status)

	if err := s.pub.PublishOrder(ctx, ToResponse(final)); err != nil {
		return nil, fmt.Errorf("publish order id=%d: %w", final.ID, err)
	}
	return final, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*OrderPage, error) {
	orders, total, err := s.repo.List(ctx, q)
	if err != nil {
		log.Printf("[order] list page=%d size=%d failed: %v", q.Page, q.Size, err)
		return nil, err
	}
	return ToPage(orders, q.normalized(), total), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	log.Printf("[order] id=%d deleted", id)
	return nil
}
