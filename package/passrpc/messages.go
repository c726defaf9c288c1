// Package passrpc describes the pass.PassService gRPC API shared by the
// server and the client: request/response messages, the service descriptor
// and a typed client. Messages travel as JSON through Codec, so the service
// is not wire-compatible with protobuf clients of the same method names.
package passrpc

// Pass is the wire form of a pass
type Pass struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Code       string `json:"code"`
	IsCode39   bool   `json:"is_code39"`
	IsOnWatch  bool   `json:"is_on_watch"`
	IsOnWidget bool   `json:"is_on_widget"`
	IsOnSiri   bool   `json:"is_on_siri"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

// PairRequest exchanges the pairing passphrase for an access token
type PairRequest struct {
	Device     string `json:"device"`
	Passphrase string `json:"passphrase"`
}

// PairResponse carries the access token
type PairResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// ListPassesRequest is empty
type ListPassesRequest struct{}

// ListPassesResponse returns a snapshot of all passes
type ListPassesResponse struct {
	Passes []*Pass `json:"passes"`
}

// GetPassRequest selects a pass by ID
type GetPassRequest struct {
	ID string `json:"id"`
}

// CreatePassRequest creates a pass
type CreatePassRequest struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	IsCode39 bool   `json:"is_code39"`
}

// UpdatePassRequest changes the supplied fields of a pass
type UpdatePassRequest struct {
	ID       string  `json:"id"`
	Title    *string `json:"title,omitempty"`
	Code     *string `json:"code,omitempty"`
	IsCode39 *bool   `json:"is_code39,omitempty"`
}

// PassResponse wraps a single pass
type PassResponse struct {
	Pass *Pass `json:"pass"`
}

// DeletePassRequest removes a pass
type DeletePassRequest struct {
	ID string `json:"id"`
}

// SetDestinationRequest pins or unpins a pass for a destination
type SetDestinationRequest struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	Value       bool   `json:"value"`
}

// ActivePassRequest asks which pass a destination shows
type ActivePassRequest struct {
	Destination string `json:"destination"`
}

// RenderPassRequest asks for a PNG of a pass
type RenderPassRequest struct {
	ID      string `json:"id"`
	Size    int32  `json:"size"`
	ForceQR bool   `json:"force_qr"`
}

// RenderPassResponse carries the PNG bytes
type RenderPassResponse struct {
	PNG []byte `json:"png"`
}

// Empty is returned by calls without a result
type Empty struct{}
