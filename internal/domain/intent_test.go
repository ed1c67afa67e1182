package domain

import "testing"

func TestParseAction(t *testing.T) {
	cases := []struct {
		raw    string
		want   Action
		wantOK bool
	}{
		{"buy", ActionBuy, true},
		{"BUY", ActionBuy, true},
		{"Long", ActionBuy, true},
		{"sell", ActionSell, true},
		{"SHORT", ActionSell, true},
		{" Update ", ActionUpdate, true},
		{"hold", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseAction(tc.raw)
		if ok != tc.wantOK {
			t.Errorf("ParseAction(%q) ok = %v, want %v", tc.raw, ok, tc.wantOK)
		}
		if got != tc.want {
			t.Errorf("ParseAction(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestActionSide(t *testing.T) {
	if ActionBuy.Side() != SideBuy {
		t.Errorf("expected Buy side for ActionBuy")
	}
	if ActionSell.Side() != SideSell {
		t.Errorf("expected Sell side for ActionSell")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"BTCUSDT.P", "BTCUSDT"},
		{"btcusdt.p", "BTCUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"eth-usdt.p", "ETHUSDT"},
		{" SOLUSDT ", "SOLUSDT"},
	}

	for _, tc := range cases {
		if got := NormalizeSymbol(tc.raw); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

// Normalizing an already-normalized symbol must yield the same symbol.
func TestNormalizeSymbolIdempotent(t *testing.T) {
	for _, raw := range []string{"BTCUSDT.P", "ETH-USDT", "xrpusdt"} {
		once := NormalizeSymbol(raw)
		twice := NormalizeSymbol(once)
		if once != twice {
			t.Errorf("NormalizeSymbol not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}
