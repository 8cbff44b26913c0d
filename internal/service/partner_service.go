package service

import (
	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PartnerService manages suppliers and clients. Balances are read-only here:
// only purchases and credit sales move them.
type PartnerService interface {
	ListSuppliers(activeOnly bool) ([]model.Supplier, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(req *model.Supplier, actor Actor) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, req *model.PartnerUpdate, actor Actor) (*model.Supplier, error)
	DeactivateSupplier(id uuid.UUID, actor Actor) error

	ListClients(activeOnly bool) ([]model.Client, error)
	GetClient(id uuid.UUID) (*model.Client, error)
	CreateClient(req *model.Client, actor Actor) (*model.Client, error)
	UpdateClient(id uuid.UUID, req *model.PartnerUpdate, actor Actor) (*model.Client, error)
	DeactivateClient(id uuid.UUID, actor Actor) error
}

type partnerService struct {
	supplierRepo repository.SupplierRepository
	clientRepo   repository.ClientRepository
	log          zerolog.Logger
}

func NewPartnerService(sRepo repository.SupplierRepository, cRepo repository.ClientRepository, log zerolog.Logger) PartnerService {
	return &partnerService{supplierRepo: sRepo, clientRepo: cRepo, log: log}
}

func (s *partnerService) ListSuppliers(activeOnly bool) ([]model.Supplier, error) {
	suppliers, err := s.supplierRepo.FindAll(activeOnly)
	return suppliers, apperr.Wrap("partners.list_suppliers", err)
}

func (s *partnerService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, &apperr.Error{Kind: apperr.SupplierNotFound, Op: "partners.get_supplier", Message: "supplier not found"}
		}
		return nil, apperr.Wrap("partners.get_supplier", err)
	}
	return supplier, nil
}

func (s *partnerService) CreateSupplier(req *model.Supplier, actor Actor) (*model.Supplier, error) {
	const op = "partners.create_supplier"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	supplier := *req
	supplier.ID = uuid.Nil
	supplier.Balance = decimal.Zero
	supplier.IsActive = true
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Create(&supplier); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	s.log.Info().Str("supplier_id", supplier.ID.String()).Str("name", supplier.Name).Msg("supplier created")
	return &supplier, nil
}

func (s *partnerService) UpdateSupplier(id uuid.UUID, req *model.PartnerUpdate, actor Actor) (*model.Supplier, error) {
	const op = "partners.update_supplier"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	supplier, err := s.GetSupplier(id)
	if err != nil {
		return nil, err
	}
	req.ApplySupplier(supplier)
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return supplier, nil
}

func (s *partnerService) DeactivateSupplier(id uuid.UUID, actor Actor) error {
	inactive := false
	_, err := s.UpdateSupplier(id, &model.PartnerUpdate{IsActive: &inactive}, actor)
	return err
}

func (s *partnerService) ListClients(activeOnly bool) ([]model.Client, error) {
	clients, err := s.clientRepo.FindAll(activeOnly)
	return clients, apperr.Wrap("partners.list_clients", err)
}

func (s *partnerService) GetClient(id uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap("partners.get_client", err)
	}
	return client, nil
}

func (s *partnerService) CreateClient(req *model.Client, actor Actor) (*model.Client, error) {
	const op = "partners.create_client"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	client := *req
	client.ID = uuid.Nil
	client.Balance = decimal.Zero
	client.IsActive = true
	client.CreatedBy = actor.ID
	client.UpdatedBy = actor.ID
	if err := s.clientRepo.Create(&client); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	s.log.Info().Str("client_id", client.ID.String()).Str("name", client.Name).Msg("client created")
	return &client, nil
}

func (s *partnerService) UpdateClient(id uuid.UUID, req *model.PartnerUpdate, actor Actor) (*model.Client, error) {
	const op = "partners.update_client"
	actor = actor.orSystem()

	if err := validate(op, req); err != nil {
		return nil, err
	}
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}
	req.ApplyClient(client)
	client.UpdatedBy = actor.ID
	if err := s.clientRepo.Update(client); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return client, nil
}

func (s *partnerService) DeactivateClient(id uuid.UUID, actor Actor) error {
	inactive := false
	_, err := s.UpdateClient(id, &model.PartnerUpdate{IsActive: &inactive}, actor)
	return err
}
