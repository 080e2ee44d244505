// Package core holds the Model aggregate root: one catalog per entity kind,
// the membership index between loadings/constraints and their sets, and
// the validation rules evaluated over a finished model.
package core

import (
	"femtrans/internal/catalog"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// Mesh is the geometry collaborator the model queries and extends.
type Mesh interface {
	AddNode(id int, coords domain.Vector3, displacementCS int) int
	FindOrReserveNode(id int) int
	FindNodePosition(id int) (int, bool)
	FindNode(position int) (mesh.Node, bool)
	NodeCount() int
	Nodes() []mesh.Node
	AllowDOFS(position int, dofs domain.DOFS)
	AddCell(id int, typ mesh.CellType, nodeIDs []int, virtual bool) (int, error)
	CellByID(id int) (mesh.Cell, bool)
	FindCell(position int) (mesh.Cell, bool)
	Cells() []mesh.Cell
	CellNodePositions(cellID int) []int
	CreateCellGroup(name string, originalID int, comment string) (*mesh.CellGroup, error)
	FindGroup(name string) (*mesh.CellGroup, bool)
	Groups() []*mesh.CellGroup
	RemoveGroup(name string) bool
	GroupNodePositions(name string) []int
	AssignElementID(cellIDs []int, elementID int)
	Finish()
	Validate() error
}

// Model is the aggregate root of a structural-analysis model.
type Model struct {
	Name string

	mesh   Mesh
	logger *zap.Logger

	materials         *catalog.Container[*domain.Material, domain.MaterialType]
	elementSets       *catalog.Container[*domain.ElementSet, domain.ElementSetType]
	loadings          *catalog.Container[*domain.Loading, domain.LoadingType]
	loadSets          *catalog.Container[*domain.LoadSet, domain.LoadSetType]
	constraints       *catalog.Container[*domain.Constraint, domain.ConstraintType]
	constraintSets    *catalog.Container[*domain.ConstraintSet, domain.ConstraintSetType]
	objectives        *catalog.Container[*domain.Objective, domain.ObjectiveType]
	analyses          *catalog.Container[*domain.Analysis, domain.AnalysisType]
	coordinateSystems *catalog.Container[*domain.CoordinateSystem, domain.CoordinateSystemType]
	values            *catalog.Container[*domain.Value, domain.ValueType]

	loadMembers       *membershipIndex[domain.LoadSetType, domain.LoadingType]
	constraintMembers *membershipIndex[domain.ConstraintSetType, domain.ConstraintType]

	virtualMaterialID   int
	materialAssignments map[int][]string
	finished            bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the structured logger used for recoverable conditions.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModel returns an empty model over the given mesh.
func NewModel(name string, msh Mesh, opts ...Option) *Model {
	m := &Model{
		Name:                name,
		mesh:                msh,
		logger:              zap.NewNop(),
		materials:           catalog.New[*domain.Material, domain.MaterialType](domain.EntityMaterial, catalog.Hooks[*domain.Material]{}),
		elementSets:         catalog.New[*domain.ElementSet, domain.ElementSetType](domain.EntityElementSet, catalog.Hooks[*domain.ElementSet]{}),
		loadings:            catalog.New[*domain.Loading, domain.LoadingType](domain.EntityLoading, catalog.Hooks[*domain.Loading]{}),
		loadSets:            catalog.New[*domain.LoadSet, domain.LoadSetType](domain.EntityLoadSet, catalog.Hooks[*domain.LoadSet]{}),
		constraints:         catalog.New[*domain.Constraint, domain.ConstraintType](domain.EntityConstraint, catalog.Hooks[*domain.Constraint]{}),
		constraintSets:      catalog.New[*domain.ConstraintSet, domain.ConstraintSetType](domain.EntityConstraintSet, catalog.Hooks[*domain.ConstraintSet]{}),
		objectives:          catalog.New[*domain.Objective, domain.ObjectiveType](domain.EntityObjective, catalog.Hooks[*domain.Objective]{}),
		analyses:            catalog.New[*domain.Analysis, domain.AnalysisType](domain.EntityAnalysis, catalog.Hooks[*domain.Analysis]{}),
		coordinateSystems:   catalog.New[*domain.CoordinateSystem, domain.CoordinateSystemType](domain.EntityCoordinateSystem, catalog.Hooks[*domain.CoordinateSystem]{}),
		values:              catalog.New[*domain.Value, domain.ValueType](domain.EntityValue, valueHooks()),
		loadMembers:         newMembershipIndex[domain.LoadSetType, domain.LoadingType](),
		constraintMembers:   newMembershipIndex[domain.ConstraintSetType, domain.ConstraintType](),
		virtualMaterialID:   domain.NoID,
		materialAssignments: make(map[int][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// valueHooks implements placeholder merging: a placeholder added over a real
// value hands its axis parameters to it, a real value added over a
// placeholder takes the placeholder's parameters and replaces it.
func valueHooks() catalog.Hooks[*domain.Value] {
	return catalog.Hooks[*domain.Value]{
		Merge: func(existing, incoming *domain.Value) (*domain.Value, error) {
			switch {
			case incoming.PlaceHolder:
				existing.CopyParameters(incoming)
				return existing, nil
			case existing.PlaceHolder:
				incoming.CopyParameters(existing)
				return incoming, nil
			default:
				return nil, domain.DuplicateEntityError{Entity: domain.EntityValue, Type: string(incoming.Type), ID: incoming.ID, OriginalID: incoming.OriginalID}
			}
		},
		Transient: func(v *domain.Value) bool { return v.PlaceHolder },
	}
}

// Mesh returns the geometry collaborator.
func (m *Model) Mesh() Mesh { return m.mesh }

// Logger returns the model logger.
func (m *Model) Logger() *zap.Logger { return m.logger }

// Finished reports whether the transformation pipeline already ran.
func (m *Model) Finished() bool { return m.finished }

// MarkFinished records that the transformation pipeline completed.
func (m *Model) MarkFinished() { m.finished = true }

// Stats counts the entities of every kind.
type Stats struct {
	Nodes             int `json:"nodes"`
	Cells             int `json:"cells"`
	Materials         int `json:"materials"`
	ElementSets       int `json:"element_sets"`
	Loadings          int `json:"loadings"`
	LoadSets          int `json:"load_sets"`
	Constraints       int `json:"constraints"`
	ConstraintSets    int `json:"constraint_sets"`
	Objectives        int `json:"objectives"`
	Analyses          int `json:"analyses"`
	CoordinateSystems int `json:"coordinate_systems"`
	Values            int `json:"values"`
}

// Stats returns entity counts.
func (m *Model) Stats() Stats {
	return Stats{
		Nodes:             m.mesh.NodeCount(),
		Cells:             len(m.mesh.Cells()),
		Materials:         m.materials.Len(),
		ElementSets:       m.elementSets.Len(),
		Loadings:          m.loadings.Len(),
		LoadSets:          m.loadSets.Len(),
		Constraints:       m.constraints.Len(),
		ConstraintSets:    m.constraintSets.Len(),
		Objectives:        m.objectives.Len(),
		Analyses:          m.analyses.Len(),
		CoordinateSystems: m.coordinateSystems.Len(),
		Values:            m.values.Len(),
	}
}

// Counts flattens Stats into a kind-keyed map.
func (s Stats) Counts() map[domain.EntityKind]int {
	return map[domain.EntityKind]int{
		domain.EntityNode:             s.Nodes,
		domain.EntityCell:             s.Cells,
		domain.EntityMaterial:         s.Materials,
		domain.EntityElementSet:       s.ElementSets,
		domain.EntityLoading:          s.Loadings,
		domain.EntityLoadSet:          s.LoadSets,
		domain.EntityConstraint:       s.Constraints,
		domain.EntityConstraintSet:    s.ConstraintSets,
		domain.EntityObjective:        s.Objectives,
		domain.EntityAnalysis:         s.Analyses,
		domain.EntityCoordinateSystem: s.CoordinateSystems,
		domain.EntityValue:            s.Values,
	}
}
