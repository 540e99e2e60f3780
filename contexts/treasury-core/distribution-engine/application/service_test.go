package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"
	ledgermemory "seneschal/contexts/treasury-core/operation-ledger/adapters/memory"
	ledgerapp "seneschal/contexts/treasury-core/operation-ledger/application"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"

	"github.com/shopspring/decimal"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDGen struct {
	next int
}

func (g *sequenceIDGen) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

// stubGateway records every transfer request and fails the addresses listed
// in failing.
type stubGateway struct {
	requests []ports.TransferRequest
	failing  map[string]string
}

func (g *stubGateway) Transfer(_ context.Context, req ports.TransferRequest) (string, error) {
	g.requests = append(g.requests, req)
	if reason, ok := g.failing[req.Destination]; ok {
		return "", errors.New(reason)
	}
	return "sig-" + req.Destination, nil
}

type stubHolders struct {
	holders []ports.Holder
	err     error
}

func (h stubHolders) ListHolders(_ context.Context, _ string) ([]ports.Holder, error) {
	return h.holders, h.err
}

type countingPacer struct {
	calls int
}

func (p *countingPacer) Pace(_ context.Context) { p.calls++ }

type snapshotStore struct {
	snapshots map[string]entities.HolderSnapshot
}

func newSnapshotStore() *snapshotStore {
	return &snapshotStore{snapshots: map[string]entities.HolderSnapshot{}}
}

func (s *snapshotStore) CreateSnapshot(_ context.Context, snapshot entities.HolderSnapshot) error {
	if _, ok := s.snapshots[snapshot.ID]; ok {
		return domainerrors.ErrSnapshotExists
	}
	s.snapshots[snapshot.ID] = snapshot
	return nil
}

func (s *snapshotStore) GetSnapshot(_ context.Context, snapshotID string) (entities.HolderSnapshot, error) {
	snapshot, ok := s.snapshots[snapshotID]
	if !ok {
		return entities.HolderSnapshot{}, domainerrors.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func newTestLedger() (ledgerapp.Service, *ledgermemory.Store) {
	store := ledgermemory.NewStore(nil)
	return ledgerapp.Service{
		Repo:        store,
		Audit:       store,
		Outbox:      store,
		Clock:       fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:       &sequenceIDGen{},
		ServiceName: "seneschal-test",
	}, store
}

func newTestService(gateway ports.TransferGateway, holders ports.HolderSource) (Service, *ledgermemory.Store) {
	ledger, store := newTestLedger()
	return Service{
		Ledger:    ledger,
		Gateway:   gateway,
		Holders:   holders,
		Snapshots: newSnapshotStore(),
		Pacer:     NopPacer{},
		Clock:     fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:     &sequenceIDGen{},
		Identity: ports.TreasuryIdentity{
			WalletKey:     "treasury-key",
			WalletAddress: "treasury-addr",
			AssetID:       "asset-1",
		},
	}, store
}

func TestDistributeMixedOutcomesProducesPartial(t *testing.T) {
	gateway := &stubGateway{failing: map[string]string{"addr-b": "destination account frozen"}}
	service, _ := newTestService(gateway, nil)

	result, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindNativeAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.RequireFromString("3")},
			{Address: "addr-b", Amount: decimal.RequireFromString("7")},
		},
		Reason: "community round",
	})
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Record.Status != ledgerentities.StatusPartial {
		t.Fatalf("expected partial status, got %q", result.Record.Status)
	}
	if result.SuccessCount != 1 || result.FailCount != 1 {
		t.Fatalf("expected 1/1 split, got %d/%d", result.SuccessCount, result.FailCount)
	}
	if len(result.Record.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Record.Outcomes))
	}
	// Outcomes keep request order regardless of success.
	if result.Record.Outcomes[0].Address != "addr-a" || result.Record.Outcomes[1].Address != "addr-b" {
		t.Fatalf("outcome order does not match request order")
	}
	if result.Record.Outcomes[0].Signature != "sig-addr-a" {
		t.Fatalf("expected signature on succeeded outcome, got %q", result.Record.Outcomes[0].Signature)
	}
	if result.Record.Outcomes[1].Error != "destination account frozen" {
		t.Fatalf("expected gateway error on failed outcome, got %q", result.Record.Outcomes[1].Error)
	}
}

func TestDistributeRejectedRequestLeavesNoRecord(t *testing.T) {
	gateway := &stubGateway{}
	service, store := newTestService(gateway, nil)

	_, err := service.Distribute(context.Background(), DistributeInput{
		Kind:       entities.KindNativeAsset,
		Recipients: nil,
	})
	if !errors.Is(err, domainerrors.ErrInvalidDistribution) {
		t.Fatalf("expected invalid distribution error, got %v", err)
	}

	records, err := store.ListOperations(context.Background(), ledgerports.OperationFilter{})
	if err != nil {
		t.Fatalf("list operations failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("rejected request must not open a record, found %d", len(records))
	}
	if len(gateway.requests) != 0 {
		t.Fatalf("rejected request must not reach the gateway")
	}
}

func TestDistributeRejectsNonPositiveAmount(t *testing.T) {
	service, _ := newTestService(&stubGateway{}, nil)

	_, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindNativeAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.Zero},
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidDistribution) {
		t.Fatalf("expected invalid distribution error, got %v", err)
	}
}

func TestDistributeRecordQuantityMatchesOutcomeSum(t *testing.T) {
	service, _ := newTestService(&stubGateway{}, nil)

	result, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindManagedAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.RequireFromString("1.5")},
			{Address: "addr-b", Amount: decimal.RequireFromString("2.25")},
			{Address: "addr-c", Amount: decimal.RequireFromString("0.25")},
		},
	})
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	sum := decimal.Zero
	for _, outcome := range result.Record.Outcomes {
		sum = sum.Add(outcome.Amount)
	}
	if !sum.Equal(result.Record.Quantity) {
		t.Fatalf("outcome amounts sum to %s, record quantity %s", sum, result.Record.Quantity)
	}
	if !result.Record.Quantity.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected quantity 4, got %s", result.Record.Quantity)
	}
}

func TestDistributeNativeKindOmitsAssetOnTransfers(t *testing.T) {
	gateway := &stubGateway{}
	service, _ := newTestService(gateway, nil)

	_, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindNativeAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.RequireFromString("1")},
		},
	})
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if gateway.requests[0].AssetID != "" {
		t.Fatalf("native transfers must carry no asset id, got %q", gateway.requests[0].AssetID)
	}
	if gateway.requests[0].SourceKey != "treasury-key" {
		t.Fatalf("expected treasury wallet key on transfer, got %q", gateway.requests[0].SourceKey)
	}
}

func TestDistributeManagedKindRequiresAssetID(t *testing.T) {
	service, _ := newTestService(&stubGateway{}, nil)
	service.Identity.AssetID = ""

	_, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindManagedAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.RequireFromString("1")},
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidDistribution) {
		t.Fatalf("expected invalid distribution error, got %v", err)
	}
}

func TestDistributePacesBetweenConsecutiveAttempts(t *testing.T) {
	pacer := &countingPacer{}
	service, _ := newTestService(&stubGateway{}, nil)
	service.Pacer = pacer

	_, err := service.Distribute(context.Background(), DistributeInput{
		Kind: entities.KindNativeAsset,
		Recipients: []entities.Recipient{
			{Address: "addr-a", Amount: decimal.RequireFromString("1")},
			{Address: "addr-b", Amount: decimal.RequireFromString("1")},
			{Address: "addr-c", Amount: decimal.RequireFromString("1")},
		},
	})
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if pacer.calls != 2 {
		t.Fatalf("expected pacing between attempts only, got %d calls", pacer.calls)
	}
}
