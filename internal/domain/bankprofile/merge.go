package bankprofile

// DeepMerge merges override into base recursively and returns a new map;
// neither input is mutated. When both sides hold a non-array object for the
// same key the objects merge key-by-key; any other conflict is won by the
// override outright. Arrays are never element-merged.
func DeepMerge(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}

	for k, overrideVal := range override {
		baseVal, exists := merged[k]
		if !exists {
			merged[k] = overrideVal
			continue
		}

		baseMap, baseIsMap := baseVal.(map[string]any)
		overrideMap, overrideIsMap := overrideVal.(map[string]any)
		if baseIsMap && overrideIsMap {
			merged[k] = DeepMerge(baseMap, overrideMap)
			continue
		}

		merged[k] = overrideVal
	}

	return merged
}

// mergeBlock applies DeepMerge treating nil blocks as empty.
func mergeBlock(base, override PatternBlock) PatternBlock {
	if base == nil && override == nil {
		return PatternBlock{}
	}
	if base == nil {
		base = PatternBlock{}
	}
	if override == nil {
		override = PatternBlock{}
	}
	return DeepMerge(base, override)
}
