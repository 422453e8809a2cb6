//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func seededCoupon(t *testing.T, code string) *couponResponse {
	t.Helper()

	resp := doGet(t, "/api/coupons")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[browseCouponsResponse](t, resp)
	for i := range body.Coupons {
		if body.Coupons[i].Code == code {
			return &body.Coupons[i]
		}
	}
	return nil
}

func TestListCoupons_SeededData(t *testing.T) {
	welcome := seededCoupon(t, "WELCOME10")
	if welcome == nil {
		t.Fatal("seeded coupon WELCOME10 not found")
	}
	if welcome.DiscountRate.String() != "0.1" {
		t.Errorf("discount rate: got %s, want 0.1", welcome.DiscountRate)
	}

	vip := seededCoupon(t, "VIP50")
	if vip == nil {
		t.Fatal("seeded coupon VIP50 not found")
	}
	if vip.UsageLimit == nil || *vip.UsageLimit != 10 {
		t.Errorf("VIP50 usage limit: got %v, want 10", vip.UsageLimit)
	}
}

func TestCreateCoupon(t *testing.T) {
	code := fmt.Sprintf("ITEST%d", time.Now().UnixNano())
	limit := 3
	validTo := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	resp := doPost(t, "/api/coupons", createCouponRequest{
		Code:         code,
		DiscountRate: []byte("0.15"),
		ValidTo:      &validTo,
		UsageLimit:   &limit,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	created := seededCoupon(t, code)
	if created == nil {
		t.Fatalf("created coupon %s not listed", code)
	}
	if created.DiscountRate.String() != "0.15" {
		t.Errorf("discount rate: got %s, want 0.15", created.DiscountRate)
	}
	if created.UsedCount != 0 {
		t.Errorf("used count: got %d, want 0", created.UsedCount)
	}
	if created.ValidTo == nil || !created.ValidTo.Equal(validTo) {
		t.Errorf("valid to: got %v, want %v", created.ValidTo, validTo)
	}
}

func TestCreateCoupon_Duplicate(t *testing.T) {
	code := fmt.Sprintf("IDUP%d", time.Now().UnixNano())

	first := doPost(t, "/api/coupons", createCouponRequest{Code: code, DiscountRate: []byte("0.2")})
	first.Body.Close()
	if first.StatusCode != http.StatusNoContent {
		t.Fatalf("first create: expected 204, got %d", first.StatusCode)
	}

	second := doPost(t, "/api/coupons", createCouponRequest{Code: code, DiscountRate: []byte("0.2")})
	defer second.Body.Close()

	if second.StatusCode != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d", second.StatusCode)
	}

	body := decodeJSON[errorResponse](t, second)
	if body.Field != "code" {
		t.Errorf("error field: got %q, want %q", body.Field, "code")
	}
}

func TestCreateCoupon_InvalidRate(t *testing.T) {
	tests := []struct {
		name string
		rate string
	}{
		{name: "zero", rate: "0"},
		{name: "negative", rate: "-0.1"},
		{name: "above one", rate: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPost(t, "/api/coupons", createCouponRequest{
				Code:         "BADRATE",
				DiscountRate: []byte(tt.rate),
			})
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCreateCoupon_WindowInPast(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)

	resp := doPost(t, "/api/coupons", createCouponRequest{
		Code:         fmt.Sprintf("IPAST%d", time.Now().UnixNano()),
		DiscountRate: []byte("0.1"),
		ValidFrom:    &past,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateCoupon_MalformedBody(t *testing.T) {
	resp := doPostRaw(t, "/api/coupons", `{"code":`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
