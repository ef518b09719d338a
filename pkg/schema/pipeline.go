package schema

// Pipeline stages whose flags are read from settings.pipeline.
const (
	StageQualityControl Stage = "quality_control"
	StageDADA           Stage = "dada"
)

// Top-level section names, in the order they are validated.
const (
	SectionSettings           = "settings"
	SectionInputData          = "input_data"
	SectionQualityControl     = "quality_control"
	SectionFilterAndTrim      = "filter_and_trim"
	SectionASVInference       = "asv_inference"
	SectionTaxonomyAssignment = "taxonomy_assignment"
)

// PipelineSchema returns the rule tree for one bubu experiment configuration.
//
// settings comes first because settings.pipeline sets the stage flags that
// gate quality_control (quality_control flag) and the three DADA sections
// (dada flag). A flag only takes the declared value when that value is a
// boolean; otherwise it stays enabled and the type violation is reported.
func PipelineSchema() Rule {
	return Object("",
		Object(SectionSettings,
			Bool("run_experiment"),
			String("name"),
			String("fancy_name"),
			DirPath("output_directory", false),
			Int("random_seed"),
			Bool("multi_thread"),
			Bool("verbose_output"),
			String("notes"),
			Object("pipeline",
				Bool("quality_control").Sets(StageQualityControl),
				Bool("dada").Sets(StageDADA),
			),
		),

		Object(SectionInputData,
			DirPath("input_miseq_directory", true),
			DirPath("output_filtered_fastq_directory", false),
			Bool("normalize_pids"),
			ArrayOf("custom_samples_pid", String("")),
			Bool("sample_input"),
			Number("sample_frequency").Between(0.0, 1.0),
		),

		Object(SectionQualityControl,
			Bool("quality_profile_plot"),
			Bool("rarefaction_curve"),
			Object("multiqc",
				Bool("separate_direction_reports"),
				Bool("delete_intermediate_files"),
				Bool("interactive_plots"),
				String("configs").Opt().Expects("a string if provided"),
			),
		).Gated(StageQualityControl),

		Object(SectionFilterAndTrim,
			Bool("remove_phix_genome"),
			Int("min_read_length"),
			Object("truncate",
				Int("forward"),
				Int("reverse"),
			),
			Object("trim_left",
				Int("forward"),
				Int("reverse"),
			),
		).Gated(StageDADA),

		Object(SectionASVInference,
			Object("error_model",
				Bool("randomize"),
				Int("iterations").Between(1, 30),
			),
			Bool("dada_pool_samples"),
		).Gated(StageDADA),

		ArrayOf(SectionTaxonomyAssignment,
			Object("",
				Bool("active"),
				String("reference_name"),
				FilePath("train_set_path", true),
				Bool("assign_species"),
				Bool("allow_multiple_species"),
				FilePath("species_train_set_path", true),
				Bool("reverse_match_taxa"),
			),
		).Gated(StageDADA),
	)
}

// Sections returns the top-level section names of the pipeline schema.
func Sections() []string {
	root := PipelineSchema()
	names := make([]string, 0, len(root.Fields))
	for _, f := range root.Fields {
		names = append(names, f.Name)
	}
	return names
}
