package techniques_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindwell/sage/techniques"
)

const catalogJSON = `{
  "深呼吸放松法": {
    "description": "通过缓慢的腹式呼吸来缓解焦虑和紧张情绪",
    "steps": ["坐下", "吸气4秒", "呼气6秒"],
    "examples": [
      {"scenario": "用户说自己焦虑", "response": "我们先做几次深呼吸。"},
      {"scenario": "面试前紧张", "response": "紧张是正常的。"},
      {"scenario": "第三个示例", "response": "不应出现在提示词里。"}
    ]
  },
  "认知重构": {
    "description": "识别并挑战消极思维",
    "steps": ["写下想法", "寻找证据", "替代想法"],
    "examples": []
  }
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "techniques.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c := techniques.Load(writeCatalog(t, catalogJSON))
	if c.Len() != 2 {
		t.Fatalf("expected 2 techniques, got %d", c.Len())
	}
	if _, ok := c.Get("认知重构"); !ok {
		t.Error("认知重构 should be present")
	}
}

func TestLoad_MissingFileDegrades(t *testing.T) {
	c := techniques.Load(filepath.Join(t.TempDir(), "nope.json"))
	if c.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d", c.Len())
	}
	if got := c.Relevant("焦虑", 3); len(got) != 0 {
		t.Errorf("expected no matches from empty catalog, got %d", len(got))
	}
}

func TestLoad_MalformedDegrades(t *testing.T) {
	c := techniques.Load(writeCatalog(t, "{not json"))
	if c.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d", c.Len())
	}
}

func TestRelevant(t *testing.T) {
	c := techniques.Load(writeCatalog(t, catalogJSON))

	got := c.Relevant("焦虑", 3)
	if len(got) != 1 || got[0].Name != "深呼吸放松法" {
		t.Fatalf("expected [深呼吸放松法], got %v", names(got))
	}

	// Step text matches too.
	got = c.Relevant("证据", 3)
	if len(got) != 1 || got[0].Name != "认知重构" {
		t.Fatalf("expected [认知重构], got %v", names(got))
	}

	if got := c.Relevant("毫不相关的一句话", 3); len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestFormatForPrompt(t *testing.T) {
	c := techniques.Load(writeCatalog(t, catalogJSON))
	got := c.Relevant("焦虑", 1)
	if len(got) != 1 {
		t.Fatal("expected one match")
	}

	s := got[0].FormatForPrompt()
	for _, want := range []string{"治疗技术: 深呼吸放松法", "描述:", "1. 坐下", "场景: 用户说自己焦虑"} {
		if !strings.Contains(s, want) {
			t.Errorf("formatted prompt missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "第三个示例") {
		t.Error("examples should be capped at two")
	}
}

func names(ts []techniques.NamedTechnique) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
