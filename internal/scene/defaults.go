package scene

// Preset ids shipped with dread.
const (
	Sea    ID = "sea"
	Camp   ID = "camp"
	Forest ID = "forest"
)

// Defaults returns the three built-in scenes. Sources are relative and
// resolve against the configured sounds directory or remote base URL.
func Defaults() []Scene {
	return []Scene{
		New(Sea, "海边", []string{"sea-horror.mp3"}, "海边恐怖音乐", ""),
		New(Camp, "营地", []string{"camp-horror.mp3"}, "营地恐怖音乐", ""),
		New(Forest, "森林", []string{"forest-horror.mp3"}, "森林恐怖音乐", ""),
	}
}
