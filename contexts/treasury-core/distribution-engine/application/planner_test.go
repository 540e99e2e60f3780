package application

import (
	"context"
	"errors"
	"testing"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"

	"github.com/shopspring/decimal"
)

func snapshotOf(balances map[string]string) entities.HolderSnapshot {
	snapshot := entities.HolderSnapshot{
		ID:      "snap-1",
		AssetID: "asset-1",
	}
	total := decimal.Zero
	// Deterministic order for assertions.
	for _, address := range []string{"addr-a", "addr-b", "addr-c", "addr-d"} {
		balance, ok := balances[address]
		if !ok {
			continue
		}
		amount := decimal.RequireFromString(balance)
		snapshot.Holders = append(snapshot.Holders, entities.SnapshotHolder{
			Address: address,
			Balance: amount,
		})
		total = total.Add(amount)
	}
	snapshot.HolderCount = len(snapshot.Holders)
	snapshot.TotalHeld = total
	return snapshot
}

func TestPlanProportionalExactSplit(t *testing.T) {
	snapshot := snapshotOf(map[string]string{
		"addr-a": "70",
		"addr-b": "20",
		"addr-c": "10",
	})

	recipients, err := PlanProportional(snapshot, decimal.RequireFromString("100"))
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	want := map[string]string{"addr-a": "70", "addr-b": "20", "addr-c": "10"}
	if len(recipients) != len(want) {
		t.Fatalf("expected %d recipients, got %d", len(want), len(recipients))
	}
	for _, recipient := range recipients {
		if !recipient.Amount.Equal(decimal.RequireFromString(want[recipient.Address])) {
			t.Fatalf("%s: expected %s, got %s", recipient.Address, want[recipient.Address], recipient.Amount)
		}
	}
}

func TestPlanProportionalRemainderGoesToLastHolder(t *testing.T) {
	snapshot := snapshotOf(map[string]string{
		"addr-a": "1",
		"addr-b": "1",
		"addr-c": "1",
	})
	total := decimal.RequireFromString("100")

	recipients, err := PlanProportional(snapshot, total)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	sum := decimal.Zero
	for _, recipient := range recipients {
		sum = sum.Add(recipient.Amount)
	}
	if !sum.Equal(total) {
		t.Fatalf("allocations sum to %s, want %s", sum, total)
	}
	truncated := decimal.RequireFromString("33.333333333")
	if !recipients[0].Amount.Equal(truncated) || !recipients[1].Amount.Equal(truncated) {
		t.Fatalf("expected truncated shares for all but last, got %s and %s",
			recipients[0].Amount, recipients[1].Amount)
	}
	if !recipients[2].Amount.Equal(total.Sub(truncated.Mul(decimal.NewFromInt(2)))) {
		t.Fatalf("last holder must absorb the remainder, got %s", recipients[2].Amount)
	}
}

func TestPlanProportionalSkipsDustShares(t *testing.T) {
	// addr-a's share of 1 over a huge supply truncates to zero at nine
	// places; only the remaining holders receive anything.
	snapshot := snapshotOf(map[string]string{
		"addr-a": "1",
		"addr-b": "10000000000",
	})

	recipients, err := PlanProportional(snapshot, decimal.RequireFromString("1"))
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("expected dust holder skipped, got %d recipients", len(recipients))
	}
	if recipients[0].Address != "addr-b" || !recipients[0].Amount.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("expected full amount to addr-b, got %s to %s", recipients[0].Amount, recipients[0].Address)
	}
}

func TestPlanProportionalRejectsEmptySnapshot(t *testing.T) {
	_, err := PlanProportional(entities.HolderSnapshot{}, decimal.RequireFromString("10"))
	if !errors.Is(err, domainerrors.ErrEmptySnapshot) {
		t.Fatalf("expected empty snapshot error, got %v", err)
	}
}

func TestCaptureSnapshotComputesPercentages(t *testing.T) {
	holders := stubHolders{holders: []ports.Holder{
		{Address: "addr-a", Balance: decimal.RequireFromString("75")},
		{Address: "addr-b", Balance: decimal.RequireFromString("25")},
	}}
	service, _ := newTestService(&stubGateway{}, holders)

	snapshot, err := service.CaptureSnapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if snapshot.AssetID != "asset-1" {
		t.Fatalf("expected configured asset id, got %q", snapshot.AssetID)
	}
	if !snapshot.TotalHeld.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected total 100, got %s", snapshot.TotalHeld)
	}
	if !snapshot.Holders[0].Percentage.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("expected 75%% share, got %s", snapshot.Holders[0].Percentage)
	}

	stored, err := service.GetSnapshot(context.Background(), snapshot.ID)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	if stored.HolderCount != 2 {
		t.Fatalf("expected persisted snapshot with 2 holders, got %d", stored.HolderCount)
	}
}

func TestCaptureSnapshotRejectsEmptyHolderList(t *testing.T) {
	service, _ := newTestService(&stubGateway{}, stubHolders{})

	_, err := service.CaptureSnapshot(context.Background(), "asset-1")
	if !errors.Is(err, domainerrors.ErrEmptySnapshot) {
		t.Fatalf("expected empty snapshot error, got %v", err)
	}
}

func TestDistributeToHoldersUsesExistingSnapshot(t *testing.T) {
	gateway := &stubGateway{}
	service, _ := newTestService(gateway, stubHolders{holders: []ports.Holder{
		{Address: "addr-a", Balance: decimal.RequireFromString("60")},
		{Address: "addr-b", Balance: decimal.RequireFromString("40")},
	}})

	snapshot, err := service.CaptureSnapshot(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	result, err := service.DistributeToHolders(context.Background(), HoldersDistributeInput{
		Kind:       entities.KindManagedAsset,
		Total:      decimal.RequireFromString("10"),
		Reason:     "holder rewards",
		SnapshotID: snapshot.ID,
	})
	if err != nil {
		t.Fatalf("distribute to holders failed: %v", err)
	}
	if result.Record.Status != ledgerentities.StatusCompleted {
		t.Fatalf("expected completed status, got %q", result.Record.Status)
	}
	if len(gateway.requests) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(gateway.requests))
	}
	if !gateway.requests[0].Amount.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected proportional 6 for addr-a, got %s", gateway.requests[0].Amount)
	}
	if !gateway.requests[1].Amount.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected remainder 4 for addr-b, got %s", gateway.requests[1].Amount)
	}
}
