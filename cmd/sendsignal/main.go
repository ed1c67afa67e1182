// Command sendsignal posts a trade signal to a running bridge, for manual
// testing against the testnet:
//
//	go run ./cmd/sendsignal -url http://localhost:8080/webhook \
//	    -action buy -symbol BTCUSDT.P -qty 0.01 -sl 49000 -tp 51000
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	url := flag.String("url", "http://localhost:8080/webhook", "webhook endpoint")
	action := flag.String("action", "buy", "buy, sell or update")
	symbol := flag.String("symbol", "BTCUSDT", "instrument symbol")
	qty := flag.Float64("qty", 0, "order quantity (0 to let the bridge size it)")
	price := flag.Float64("price", 0, "entry price, required when qty is 0")
	sl := flag.Float64("sl", 0, "stop-loss price")
	tp := flag.Float64("tp", 0, "take-profit price")
	ts := flag.Float64("ts", 0, "trailing-stop distance")
	flag.Parse()

	payload := map[string]interface{}{
		"action": *action,
		"symbol": *symbol,
	}
	if *qty > 0 {
		payload["qty"] = *qty
	}
	if *price > 0 {
		payload["price"] = *price
	}
	if *sl > 0 {
		payload["sl"] = *sl
	}
	if *tp > 0 {
		payload["tp"] = *tp
	}
	if *ts > 0 {
		payload["trailing_stop"] = *ts
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(*url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("post signal: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}

	fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, respBody)
}
