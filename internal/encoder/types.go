package encoder

// Landmark group names the headshot stage relies on.
const (
	LeftEye  = "left_eye"
	RightEye = "right_eye"
	TopLip   = "top_lip"
)

// Point is an [x, y] pixel coordinate.
type Point [2]float64

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int                `json:"face_index"`
	Dim       int                `json:"dim"`
	Embedding []float32          `json:"embedding"`
	BBox      []float64          `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64            `json:"det_score"`
	Landmarks map[string][]Point `json:"landmarks,omitempty"`
}

// FaceResponse represents the response from the face endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Skipped records an image that did not make it into the pool.
type Skipped struct {
	File   string
	Reason string
}
