package pipeline

import "femtrans/pkg/domain"

// Config holds the switches of the optional passes. The pipeline copies it
// at construction and threads the copy through every pass.
type Config struct {
	EmulateLocalDisplacement     bool `yaml:"emulate_local_displacement" json:"emulate_local_displacement"`
	DisplayHomogeneousConstraint bool `yaml:"display_homogeneous_constraint" json:"display_homogeneous_constraint"`
	CreateSkin                   bool `yaml:"create_skin" json:"create_skin"`
	EmulateAdditionalMass        bool `yaml:"emulate_additional_mass" json:"emulate_additional_mass"`
	ReplaceCombinedLoadSets      bool `yaml:"replace_combined_load_sets" json:"replace_combined_load_sets"`
	ReplaceDirectMatrices        bool `yaml:"replace_direct_matrices" json:"replace_direct_matrices"`
	RemoveRedundantSpcs          bool `yaml:"remove_redundant_spcs" json:"remove_redundant_spcs"`
	RemoveIneffectives           bool `yaml:"remove_ineffectives" json:"remove_ineffectives"`
	VirtualDiscrets              bool `yaml:"virtual_discrets" json:"virtual_discrets"`
	SplitDirectMatrices          bool `yaml:"split_direct_matrices" json:"split_direct_matrices"`
	SizeDirectMatrices           int  `yaml:"size_direct_matrices" json:"size_direct_matrices"`
	MakeCellsFromDirectMatrices  bool `yaml:"make_cells_from_direct_matrices" json:"make_cells_from_direct_matrices"`
	MakeCellsFromRBE             bool `yaml:"make_cells_from_rbe" json:"make_cells_from_rbe"`
	SplitElementsByDOFS          bool `yaml:"split_elements_by_dofs" json:"split_elements_by_dofs"`
	PartitionModel               bool `yaml:"partition_model" json:"partition_model"`
}

// DefaultSizeDirectMatrices is the node bound applied when splitting direct
// matrices.
const DefaultSizeDirectMatrices = 100

// DefaultConfig enables every pass except matrix splitting, additional mass
// emulation and model partitioning.
func DefaultConfig() Config {
	return Config{
		EmulateLocalDisplacement:     true,
		DisplayHomogeneousConstraint: true,
		CreateSkin:                   true,
		ReplaceCombinedLoadSets:      true,
		ReplaceDirectMatrices:        true,
		RemoveRedundantSpcs:          true,
		RemoveIneffectives:           true,
		VirtualDiscrets:              true,
		SizeDirectMatrices:           DefaultSizeDirectMatrices,
		MakeCellsFromDirectMatrices:  true,
		MakeCellsFromRBE:             true,
		SplitElementsByDOFS:          true,
	}
}

// Validate rejects switch combinations no pass can honour.
func (c Config) Validate() error {
	if c.SplitDirectMatrices && c.SizeDirectMatrices < 2 {
		return domain.Unsupported("", 0, "cannot split direct matrices to a size under 2 (got %d)", c.SizeDirectMatrices)
	}
	return nil
}
