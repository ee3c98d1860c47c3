package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func goodMessage(id int32, key string) received {
	return received{
		Key: key,
		Order: Order{
			ID:         id,
			ClientName: "client-1",
			Items:      []OrderItem{{SKU: "1-0", ProductName: "product-1-0", Quantity: 3}},
		},
		Headers: map[string]string{HeaderCorrelationID: "c"},
	}
}

func byName(results []CheckResult) map[string]CheckResult {
	out := map[string]CheckResult{}
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func TestVerifyAllPass(t *testing.T) {
	results := verify(2, []received{goodMessage(0, "key-a"), goodMessage(1, "key-b")}, PrefixKeys{Prefix: "key-"})
	assert.Len(t, results, 6)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %s", r.Name, r.Detail)
	}
	assert.Equal(t, "2 message returned", results[0].Name)
}

func TestVerifyReportsEachViolation(t *testing.T) {
	first := goodMessage(1, "ROUTER")
	badClient := goodMessage(2, "CHANNEL")
	badClient.Order.ClientName = "customer-2"
	badQuantity := goodMessage(4, "CHANNEL")
	badQuantity.Order.Items[0].Quantity = 11
	noHeader := goodMessage(6, "CHANNEL")
	noHeader.Headers = nil

	keys := AlternatingKeys{Even: "CHANNEL", Odd: "ROUTER"}
	results := byName(verify(3, []received{first, badClient, badQuantity, noHeader}, keys))

	assert.False(t, results["3 message returned"].Passed)
	assert.Equal(t, "got 4", results["3 message returned"].Detail)
	assert.True(t, results[keys.Contract()].Passed)
	assert.False(t, results[CheckValuePrefixes].Passed)
	assert.Contains(t, results[CheckValuePrefixes].Detail, "customer-2")
	assert.True(t, results[CheckItemCount].Passed)
	assert.False(t, results[CheckItemQuantity].Passed)
	assert.Contains(t, results[CheckItemQuantity].Detail, "quantity 11")
	assert.False(t, results[CheckCorrelationID].Passed)
}

func TestVerifyKeyContract(t *testing.T) {
	results := byName(verify(1, []received{goodMessage(0, "CHANNEL")}, AlternatingKeys{Even: "ROUTER", Odd: "CHANNEL"}))
	r := results["key is 'ROUTER' on even and 'CHANNEL' on odd index"]
	assert.False(t, r.Passed)
	assert.Equal(t, `order 0 has key "CHANNEL"`, r.Detail)
}

func TestVerifyEmptyItemsAndNoMessages(t *testing.T) {
	empty := goodMessage(0, "key-a")
	empty.Order.Items = nil
	results := byName(verify(1, []received{empty}, PrefixKeys{Prefix: "key-"}))
	assert.False(t, results[CheckItemCount].Passed)
	assert.False(t, results[CheckValuePrefixes].Passed)

	for _, r := range verify(1, nil, PrefixKeys{Prefix: "key-"})[1:] {
		assert.False(t, r.Passed)
		assert.Equal(t, detailNoMessages, r.Detail)
	}
}
