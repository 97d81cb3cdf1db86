package config

// MergeEngine は優先順位の低い層から順に適用する。nil フィールドは既存値を保つ。
// 呼び出し側は defaults → ファイル → 環境変数 → フラグ の順で重ねること。
func MergeEngine(base EngineSettings, layers ...EngineConfig) EngineSettings {
	out := base
	for _, layer := range layers {
		if layer.Receiver != nil {
			out.Receiver = *layer.Receiver
		}
		if layer.Methods != nil {
			out.Methods = cloneStrings(*layer.Methods)
		}
		if layer.Paths != nil {
			out.Paths = cloneStrings(*layer.Paths)
		}
		if layer.Excludes != nil {
			out.Excludes = cloneStrings(*layer.Excludes)
		}
		if layer.PathRegex != nil {
			out.PathRegex = cloneStrings(*layer.PathRegex)
		}
		if layer.ExcludeTypical != nil {
			out.ExcludeTypical = *layer.ExcludeTypical
		}
		if layer.Risky != nil {
			out.Risky = *layer.Risky
		}
		if layer.Verify != nil {
			out.Verify = *layer.Verify
		}
		if layer.Backup != nil {
			out.Backup = *layer.Backup
		}
		if layer.DetectLangs != nil {
			out.DetectLangs = cloneStrings(*layer.DetectLangs)
		}
		if layer.MaxFileBytes != nil {
			out.MaxFileBytes = *layer.MaxFileBytes
		}
		if layer.Jobs != nil {
			out.Jobs = *layer.Jobs
		}
		if layer.Repo != nil {
			out.Repo = *layer.Repo
		}
		if layer.Output != nil {
			out.Output = *layer.Output
		}
		if layer.Color != nil {
			out.Color = *layer.Color
		}
		if layer.NoPrefilter != nil {
			out.NoPrefilter = *layer.NoPrefilter
		}
	}
	return out
}

// MergeUI は UI 層の上書きを重ねる。
func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, layer := range layers {
		if layer.Fields != nil {
			out.Fields = *layer.Fields
		}
		if layer.Truncate != nil {
			out.Truncate = *layer.Truncate
		}
	}
	return out
}
