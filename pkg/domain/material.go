package domain

import "math"

// MaterialType tags materials; there is a single material type.
type MaterialType string

// MaterialGeneric is the only material type.
const MaterialGeneric MaterialType = "MATERIAL"

// NatureType identifies the constitutive family of a material nature.
type NatureType string

// Supported natures.
const (
	NatureElastic NatureType = "ELASTIC"
	NatureRigid   NatureType = "RIGID"
)

// Unavailable marks a numeric property that was not given.
const Unavailable = -math.MaxFloat64

// Nature is one constitutive description carried by a material.
type Nature struct {
	Type NatureType `json:"type"`
	// Elastic properties.
	E   float64 `json:"e,omitempty"`
	Nu  float64 `json:"nu,omitempty"`
	Rho float64 `json:"rho,omitempty"`
	// Rigid properties. Rigidity is Unavailable for weighted couplings.
	Rigidity    float64 `json:"rigidity,omitempty"`
	Coefficient float64 `json:"coefficient,omitempty"`
}

// ElasticNature builds an isotropic elastic nature.
func ElasticNature(e, nu, rho float64) Nature {
	return Nature{Type: NatureElastic, E: e, Nu: nu, Rho: rho}
}

// RigidNature builds a rigid nature.
func RigidNature(rigidity, coefficient float64) Nature {
	return Nature{Type: NatureRigid, Rigidity: rigidity, Coefficient: coefficient}
}

// Material groups natures. Virtual materials are synthesized by the pipeline.
type Material struct {
	Identity[MaterialType]
	Natures []Nature `json:"natures"`
	Virtual bool     `json:"virtual,omitempty"`
}

// NewMaterial returns an empty material with the given original id.
func NewMaterial(originalID int, natures ...Nature) *Material {
	return &Material{Identity: NewIdentity(MaterialGeneric, originalID), Natures: natures}
}

// Nature returns the first nature of the requested type.
func (m *Material) Nature(t NatureType) (Nature, bool) {
	for _, n := range m.Natures {
		if n.Type == t {
			return n, true
		}
	}
	return Nature{}, false
}

// AddNature appends a nature.
func (m *Material) AddNature(n Nature) { m.Natures = append(m.Natures, n) }
