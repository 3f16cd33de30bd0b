package model

import (
	"testing"
	"time"
)

func TestShopCapability_IsEffective(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cap      ShopCapability
		expected bool
	}{
		{"启用无过期", ShopCapability{IsActive: true}, true},
		{"未启用", ShopCapability{IsActive: false}, false},
		{"已过期", ShopCapability{IsActive: true, ExpirationDate: &past}, false},
		{"当天过期仍有效", ShopCapability{IsActive: true, ExpirationDate: &sameDay}, true},
		{"未来过期", ShopCapability{IsActive: true, ExpirationDate: &future}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.cap.IsEffective(asOf); result != tt.expected {
				t.Errorf("IsEffective() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestShopCapability_IsEffectiveLocalEvening(t *testing.T) {
	// 纽约时间 6 月 1 日晚上，UTC 已是 6 月 2 日
	asOf := time.Date(2026, 6, 1, 21, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expired := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	c := ShopCapability{IsActive: true, ExpirationDate: &expires}
	if !c.IsEffective(asOf) {
		t.Error("IsEffective() = false, expected true on expiration day")
	}

	c.ExpirationDate = &expired
	if c.IsEffective(asOf) {
		t.Error("IsEffective() = true, expected false after expiration day")
	}
}

func TestHasCapability(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	caps := []ShopCapability{
		{CapabilityType: CapabilityNitrogenStage, CapabilityValue: "5", IsActive: true},
		{CapabilityType: CapabilityLining, CapabilityValue: "Epoxy", IsActive: false},
		{CapabilityType: CapabilityMaterial, CapabilityValue: "Stainless", IsActive: true},
	}

	tests := []struct {
		capType  string
		value    string
		expected bool
	}{
		{CapabilityNitrogenStage, "5", true},
		{CapabilityNitrogenStage, "3", false},
		{CapabilityLining, "Epoxy", false},
		{CapabilityMaterial, "stainless", false},
		{CapabilityMaterial, "Stainless", true},
		{CapabilityCarType, "Stainless", false},
	}

	for _, tt := range tests {
		t.Run(tt.capType+"="+tt.value, func(t *testing.T) {
			if result := HasCapability(caps, tt.capType, tt.value, asOf); result != tt.expected {
				t.Errorf("HasCapability(%s, %s) = %v, expected %v", tt.capType, tt.value, result, tt.expected)
			}
		})
	}
}

func TestFindRestriction(t *testing.T) {
	restrictions := []CommodityRestriction{
		{CommodityCode: "CORN", ShopCode: "S1", RestrictionCode: RestrictionBlocked, Reason: "no food grade"},
		{CommodityCode: "CORN", ShopCode: "S2", RestrictionCode: RestrictionReview1},
	}

	if r := FindRestriction(restrictions, "CORN", "S1"); r == nil || r.RestrictionCode != RestrictionBlocked {
		t.Errorf("Expected blocked restriction for CORN/S1, got %+v", r)
	}
	if r := FindRestriction(restrictions, "CORN", "S3"); r != nil {
		t.Errorf("Expected no restriction for CORN/S3, got %+v", r)
	}
	if r := FindRestriction(nil, "CORN", "S1"); r != nil {
		t.Errorf("Expected no restriction for empty list, got %+v", r)
	}
}

func TestShopBacklog_CarsEnRouteTotal(t *testing.T) {
	tests := []struct {
		name     string
		backlog  ShopBacklog
		expected int
	}{
		{"空", ShopBacklog{}, 0},
		{"三段求和", ShopBacklog{CarsEnRoute0To6: 5, CarsEnRoute7To14: 4, CarsEnRoute15Plus: 2}, 11},
		{"仅远期", ShopBacklog{CarsEnRoute15Plus: 7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.backlog.CarsEnRouteTotal(); result != tt.expected {
				t.Errorf("CarsEnRouteTotal() = %d, expected %d", result, tt.expected)
			}
		})
	}
}
