package observability

import (
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	s := NoopSceneHooks{}
	s.OnElementAdded("and", false)
	s.OnElementRemoved("composite")
	s.OnTie(true)
	s.OnUntie(3)
	s.OnScopeChanged(1)
	s.OnRejected("add", "INVALID_TARGET")

	q := NoopQueryHooks{}
	q.OnQuery("point", 2)

	r := NoopReplayHooks{}
	r.OnStep("place", time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Scene() should return NoopSceneHooks by default")
	}
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Query() should return NoopQueryHooks by default")
	}
	if _, ok := Replay().(NoopReplayHooks); !ok {
		t.Error("Replay() should return NoopReplayHooks by default")
	}

	customScene := &testSceneHooks{}
	SetSceneHooks(customScene)
	if Scene() != customScene {
		t.Error("SetSceneHooks should set custom hooks")
	}

	customQuery := &testQueryHooks{}
	SetQueryHooks(customQuery)
	if Query() != customQuery {
		t.Error("SetQueryHooks should set custom hooks")
	}

	customReplay := &testReplayHooks{}
	SetReplayHooks(customReplay)
	if Replay() != customReplay {
		t.Error("SetReplayHooks should set custom hooks")
	}

	Reset()
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Reset() should restore NoopSceneHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSceneHooks{}
	SetSceneHooks(custom)
	SetSceneHooks(nil)

	if Scene() != custom {
		t.Error("SetSceneHooks(nil) should be ignored")
	}

	Reset()
}

type testSceneHooks struct{ NoopSceneHooks }
type testQueryHooks struct{ NoopQueryHooks }
type testReplayHooks struct{ NoopReplayHooks }
