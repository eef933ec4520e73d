package services

// filterUpdates keeps only the allowed keys of a client-supplied
// update map. Columns outside a resource's editable surface (tenant
// keys, credential hashes, identifiers) must never reach the
// database from a request body.
func filterUpdates(updates map[string]interface{}, allowed ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(allowed))
	for _, key := range allowed {
		if value, ok := updates[key]; ok {
			out[key] = value
		}
	}
	return out
}
