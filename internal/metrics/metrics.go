// Package metrics holds the Prometheus collectors of the graph importer and gateway.
package metrics

const namespace = "btcgraph"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
