package apiconnect

import (
	"errors"
	"testing"

	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/pkg/api"
)

func TestCodec(t *testing.T) {
	c := Codec{}
	if c.Name() != "json" {
		t.Errorf("Name() = %q", c.Name())
	}

	data, err := c.Marshal(&api.Share{MemberID: "m1", Amount: 1050})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got := string(data); got != `{"memberId":"m1","amount":10.50}` {
		t.Errorf("Marshal() = %s", got)
	}

	var req api.RecordSettlementRequest
	body := `{"groupId":"g1","fromMemberId":"a","toMemberId":"b","amount":"12.340","category":"Food"}`
	if err := c.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.Amount != 1234 || req.Category != "Food" {
		t.Errorf("Unmarshal() = %+v", req)
	}

	var empty api.ListGroupsRequest
	if err := c.Unmarshal(nil, &empty); err != nil {
		t.Errorf("Unmarshal(empty) error = %v", err)
	}

	for _, body := range []string{`{"amount":"abc"}`, `{"amount":10.005}`} {
		if err := c.Unmarshal([]byte(body), &req); !errors.Is(err, money.ErrInvalidAmount) {
			t.Errorf("Unmarshal(%s): expected invalid amount error, got %v", body, err)
		}
	}
}
