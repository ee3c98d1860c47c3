package harness

import (
	"fmt"
	"strings"
)

// HeaderCorrelationID, HeaderOrigin and HeaderTimestamp are set on every
// produced message.
const (
	HeaderCorrelationID = "correlationId"
	HeaderOrigin        = "origin"
	HeaderTimestamp     = "timestamp"
)

const (
	CheckValuePrefixes   = "value contains 'client-' and 'product-' strings"
	CheckItemCount       = "items count between 1 and 50"
	CheckItemQuantity    = "item quantity between 1 and 10"
	CheckCorrelationID   = "correlationId header present"
	detailNoMessages     = "no messages to verify"
	checkCountNameFormat = "%d message returned"
)

// CheckResult is the outcome of one named verification. A failed check is
// a finding about the system under test, never an error of the harness.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// CheckTotal counts the outcomes of one check across workers.
type CheckTotal struct {
	Name   string
	Passes int
	Fails  int
}

// received is a consumed message after decoding.
type received struct {
	Key     string
	Order   Order
	Headers map[string]string
}

// CountCheckName is the name of the cardinality check for n messages.
func CountCheckName(n int) string {
	return fmt.Sprintf(checkCountNameFormat, n)
}

func verify(expected int, msgs []received, keys KeyStrategy) []CheckResult {
	results := []CheckResult{{
		Name:   CountCheckName(expected),
		Passed: len(msgs) == expected,
		Detail: fmt.Sprintf("got %d", len(msgs)),
	}}

	results = append(results, every(keys.Contract(), msgs, func(m received) string {
		if !keys.Valid(int(m.Order.ID), m.Key) {
			return fmt.Sprintf("order %d has key %q", m.Order.ID, m.Key)
		}
		return ""
	}))

	results = append(results, every(CheckValuePrefixes, msgs, func(m received) string {
		if !strings.HasPrefix(m.Order.ClientName, "client-") {
			return fmt.Sprintf("order %d has clientName %q", m.Order.ID, m.Order.ClientName)
		}
		if len(m.Order.Items) == 0 || !strings.HasPrefix(m.Order.Items[0].ProductName, "product-") {
			return fmt.Sprintf("order %d has no item with a product- name first", m.Order.ID)
		}
		return ""
	}))

	results = append(results, every(CheckItemCount, msgs, func(m received) string {
		if n := len(m.Order.Items); n < 1 || n > MaxItemsPerOrder {
			return fmt.Sprintf("order %d has %d items", m.Order.ID, n)
		}
		return ""
	}))

	results = append(results, every(CheckItemQuantity, msgs, func(m received) string {
		for i, it := range m.Order.Items {
			if it.Quantity < 1 || it.Quantity > MaxItemQuantity {
				return fmt.Sprintf("order %d item %d has quantity %d", m.Order.ID, i, it.Quantity)
			}
		}
		return ""
	}))

	results = append(results, every(CheckCorrelationID, msgs, func(m received) string {
		if m.Headers[HeaderCorrelationID] == "" {
			return fmt.Sprintf("order %d has no %s header", m.Order.ID, HeaderCorrelationID)
		}
		return ""
	}))

	return results
}

// every passes when violation returns "" for all messages. An empty
// result fails; there is nothing to vouch for.
func every(name string, msgs []received, violation func(received) string) CheckResult {
	if len(msgs) == 0 {
		return CheckResult{Name: name, Detail: detailNoMessages}
	}
	for _, m := range msgs {
		if detail := violation(m); detail != "" {
			return CheckResult{Name: name, Detail: detail}
		}
	}
	return CheckResult{Name: name, Passed: true}
}
