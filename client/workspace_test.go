package client_test

import (
	"context"
	"testing"

	"github.com/trezcool/shule/client"
	"github.com/trezcool/shule/core/school"
	testutil "github.com/trezcool/shule/tests"
)

func newWorkspace(t *testing.T) (*client.Workspace, *recordingNotifier) {
	t.Helper()

	notifier := &recordingNotifier{}
	return client.NewWorkspace(client.NewClient(setupServer(t)), notifier), notifier
}

func TestWorkspace_submitStaged(t *testing.T) {
	ws, notifier := newWorkspace(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, "Nursery")
	sec := testutil.CreateSection(t, schoolRepo, "A")
	students := make([]school.Student, 0, 5)
	for _, name := range []string{"Amy", "Ben", "Cleo", "Dan", "Eve"} {
		students = append(students, testutil.CreateStudent(t, schoolRepo, name, 7))
	}

	if _, err := ws.SubmitStaged(ctx); err != client.ErrNoSelection {
		t.Errorf("SubmitStaged() error = %v; want ErrNoSelection", err)
	}

	if err := ws.SelectClass(ctx, cls); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	if _, err := ws.SubmitStaged(ctx); err != client.ErrNothingStaged {
		t.Errorf("SubmitStaged() error = %v; want ErrNothingStaged", err)
	}

	for _, std := range students {
		ws.StageStudent(std)
	}
	if got := len(ws.StagedStudents()); got != 5 {
		t.Fatalf("staged len = %d; want 5", got)
	}

	// another operator allots two of the staged students in the meantime
	testutil.CreateAllotment(t, schoolRepo, students[0], cls, sec)
	testutil.CreateAllotment(t, schoolRepo, students[1], cls, sec)

	created, err := ws.SubmitStaged(ctx)
	if err != nil {
		t.Fatalf("SubmitStaged() failed: %v", err)
	}
	if created != 3 {
		t.Errorf("SubmitStaged() created = %d; want 3", created)
	}
	if got := len(ws.StagedStudents()); got != 0 {
		t.Errorf("staged len after submit = %d; want 0", got)
	}
	if got := len(ws.View()); got != 5 {
		t.Errorf("view len after submit = %d; want 5", got)
	}
	views, err := schoolRepo.QueryAllotments(context.Background())
	if err != nil {
		t.Fatalf("QueryAllotments() failed: %v", err)
	}
	if len(views) != 5 {
		t.Errorf("allotment count = %d; want 5", len(views))
	}
	if len(notifier.successes) == 0 || notifier.successes[len(notifier.successes)-1] != "3 students allotted successfully" {
		t.Errorf("notifications = %v; want trailing %q", notifier.successes, "3 students allotted successfully")
	}
}

func TestWorkspace_stageStudent(t *testing.T) {
	ws, _ := newWorkspace(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, "Nursery")
	sec := testutil.CreateSection(t, schoolRepo, "A")
	amy := testutil.CreateStudent(t, schoolRepo, "Amy", 7)
	ben := testutil.CreateStudent(t, schoolRepo, "Ben", 8)
	testutil.CreateAllotment(t, schoolRepo, ben, cls, sec)

	if err := ws.SelectClass(ctx, cls); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	// staging twice keeps a single entry
	ws.StageStudent(amy)
	ws.StageStudent(amy)
	if staged := ws.StagedStudents(); len(staged) != 1 || staged[0].ID != amy.ID {
		t.Errorf("staged = %+v; want [Amy]", staged)
	}

	// an already allotted student cannot be staged
	ws.StageStudent(ben)
	if staged := ws.StagedStudents(); len(staged) != 1 {
		t.Errorf("staged len = %d; want 1", len(staged))
	}

	ws.UnstageStudent(amy.ID)
	if staged := ws.StagedStudents(); len(staged) != 0 {
		t.Errorf("staged len after unstage = %d; want 0", len(staged))
	}

	// changing the selection discards staged picks
	ws.StageStudent(amy)
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}
	if staged := ws.StagedStudents(); len(staged) != 0 {
		t.Errorf("staged len after reselect = %d; want 0", len(staged))
	}
}

func TestWorkspace_allotScenario(t *testing.T) {
	ws, _ := newWorkspace(t)
	ctx := context.Background()

	nursery := testutil.CreateClass(t, schoolRepo, "Nursery")
	testutil.CreateClass(t, schoolRepo, "1st Grade")
	secA := testutil.CreateSection(t, schoolRepo, "A")
	testutil.CreateSection(t, schoolRepo, "B")
	amy := testutil.CreateStudent(t, schoolRepo, "Amy", 7)
	ben := testutil.CreateStudent(t, schoolRepo, "Ben", 8)

	if err := ws.SelectClass(ctx, nursery); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, secA); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}
	ws.StageStudent(amy)

	created, err := ws.SubmitStaged(ctx)
	if err != nil {
		t.Fatalf("SubmitStaged() failed: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d; want 1", created)
	}
	if got := len(ws.StagedStudents()); got != 0 {
		t.Errorf("staged len = %d; want 0", got)
	}

	view := ws.View()
	if len(view) != 1 {
		t.Fatalf("view len = %d; want 1", len(view))
	}
	if view[0].StudentID != amy.ID || view[0].ClassName != "Nursery" || view[0].SectionName != "A" {
		t.Errorf("view[0] = %+v; want Amy in Nursery/A", view[0])
	}

	available, err := ws.AvailableStudents(ctx)
	if err != nil {
		t.Fatalf("AvailableStudents() failed: %v", err)
	}
	if len(available) != 1 || available[0].ID != ben.ID {
		t.Errorf("available = %+v; want [Ben]", available)
	}
}

func TestWorkspace_edit(t *testing.T) {
	ws, notifier := newWorkspace(t)
	ctx := context.Background()

	cls1 := testutil.CreateClass(t, schoolRepo, "Nursery")
	cls2 := testutil.CreateClass(t, schoolRepo, "1st Grade")
	sec1 := testutil.CreateSection(t, schoolRepo, "A")
	sec2 := testutil.CreateSection(t, schoolRepo, "B")
	std := testutil.CreateStudent(t, schoolRepo, "Amy", 7)
	alt := testutil.CreateAllotment(t, schoolRepo, std, cls1, sec1)
	testutil.CreateAllotment(t, schoolRepo, std, cls2, sec1)

	if err := ws.CommitEdit(ctx); err != client.ErrNotEditing {
		t.Errorf("CommitEdit() error = %v; want ErrNotEditing", err)
	}

	if err := ws.SelectClass(ctx, cls1); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec1); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	if err := ws.BeginEdit(999); err != client.ErrNotInView {
		t.Errorf("BeginEdit(999) error = %v; want ErrNotInView", err)
	}
	if err := ws.BeginEdit(alt.ID); err != nil {
		t.Fatalf("BeginEdit() failed: %v", err)
	}
	if err := ws.BeginEdit(alt.ID); err != client.ErrEditPending {
		t.Errorf("BeginEdit() twice error = %v; want ErrEditPending", err)
	}

	// moving to (1st Grade, A) collides with the student's other allotment;
	// a failed commit stays in editing
	if err := ws.ChangeEditClass(cls2.ID); err != nil {
		t.Fatalf("ChangeEditClass() failed: %v", err)
	}
	if err := ws.CommitEdit(ctx); err == nil {
		t.Fatal("CommitEdit() expected a conflict error")
	}
	if _, editing := ws.EditingID(); !editing {
		t.Error("workspace left editing state on failed commit")
	}
	if len(notifier.errors) == 0 {
		t.Error("no error notification on failed commit")
	}

	// retry with a free section
	if err := ws.ChangeEditSection(sec2.ID); err != nil {
		t.Fatalf("ChangeEditSection() failed: %v", err)
	}
	if err := ws.CommitEdit(ctx); err != nil {
		t.Fatalf("CommitEdit() failed: %v", err)
	}
	if _, editing := ws.EditingID(); editing {
		t.Error("workspace still editing after successful commit")
	}

	views, err := schoolRepo.QueryAllotments(context.Background())
	if err != nil {
		t.Fatalf("QueryAllotments() failed: %v", err)
	}
	var moved school.AllotmentView
	for _, view := range views {
		if view.ID == alt.ID {
			moved = view
		}
	}
	if moved.ClassID != cls2.ID || moved.SectionID != sec2.ID {
		t.Errorf("allotment = (%d, %d); want (%d, %d)", moved.ClassID, moved.SectionID, cls2.ID, sec2.ID)
	}

	// cancel drops the edit state without a server call
	if err := ws.SelectClass(ctx, cls2); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec2); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}
	if err := ws.BeginEdit(alt.ID); err != nil {
		t.Fatalf("BeginEdit() failed: %v", err)
	}
	ws.CancelEdit()
	if _, editing := ws.EditingID(); editing {
		t.Error("workspace still editing after cancel")
	}
}

func TestWorkspace_reorderLocal(t *testing.T) {
	ws, _ := newWorkspace(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, "Nursery")
	sec := testutil.CreateSection(t, schoolRepo, "A")
	ids := make([]int, 0, 3)
	for _, name := range []string{"Amy", "Ben", "Cleo"} {
		std := testutil.CreateStudent(t, schoolRepo, name, 7)
		ids = append(ids, testutil.CreateAllotment(t, schoolRepo, std, cls, sec).ID)
	}

	if err := ws.SelectClass(ctx, cls); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	viewIDs := func() []int {
		view := ws.View()
		got := make([]int, len(view))
		for i, v := range view {
			got[i] = v.ID
		}
		return got
	}

	assertOrder := func(want []int) {
		t.Helper()
		got := viewIDs()
		if len(got) != len(want) {
			t.Fatalf("view ids = %v; want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("view ids = %v; want %v", got, want)
			}
		}
	}

	assertOrder([]int{ids[0], ids[1], ids[2]})

	// drag the last row to the top
	ws.ReorderLocal(ids[2], ids[0])
	assertOrder([]int{ids[2], ids[0], ids[1]})

	// unknown ids are ignored
	ws.ReorderLocal(999, ids[0])
	assertOrder([]int{ids[2], ids[0], ids[1]})

	// a server mutation resets the presentation order
	if err := ws.RemoveAllotment(ctx, ids[1]); err != nil {
		t.Fatalf("RemoveAllotment() failed: %v", err)
	}
	assertOrder([]int{ids[0], ids[2]})
}

func TestWorkspace_removeAllotment_failure(t *testing.T) {
	ws, notifier := newWorkspace(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, "Nursery")
	sec := testutil.CreateSection(t, schoolRepo, "A")
	std := testutil.CreateStudent(t, schoolRepo, "Amy", 7)
	testutil.CreateAllotment(t, schoolRepo, std, cls, sec)

	if err := ws.SelectClass(ctx, cls); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	if err := ws.RemoveAllotment(ctx, 999); err == nil {
		t.Fatal("RemoveAllotment(999) expected an error")
	}
	if len(notifier.errors) == 0 {
		t.Error("no error notification on failed delete")
	}
	// the row is still visible
	if got := len(ws.View()); got != 1 {
		t.Errorf("view len = %d; want 1", got)
	}
}

func TestWorkspace_summary(t *testing.T) {
	ws, _ := newWorkspace(t)
	ctx := context.Background()

	nursery := testutil.CreateClass(t, schoolRepo, "Nursery")
	grade1 := testutil.CreateClass(t, schoolRepo, "1st Grade")
	secA := testutil.CreateSection(t, schoolRepo, "A")
	secB := testutil.CreateSection(t, schoolRepo, "B")
	amy := testutil.CreateStudent(t, schoolRepo, "Amy", 7)
	ben := testutil.CreateStudent(t, schoolRepo, "Ben", 8)
	cleo := testutil.CreateStudent(t, schoolRepo, "Cleo", 7)

	testutil.CreateAllotment(t, schoolRepo, amy, nursery, secA)
	testutil.CreateAllotment(t, schoolRepo, ben, nursery, secA)
	testutil.CreateAllotment(t, schoolRepo, cleo, grade1, secB)

	groups, err := ws.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups len = %d; want 2", len(groups))
	}
	// sorted by class then section name
	if groups[0].ClassName != "1st Grade" || groups[0].SectionName != "B" || len(groups[0].Allotments) != 1 {
		t.Errorf("groups[0] = %+v", groups[0])
	}
	if groups[1].ClassName != "Nursery" || groups[1].SectionName != "A" || len(groups[1].Allotments) != 2 {
		t.Errorf("groups[1] = %+v", groups[1])
	}
}

func TestWorkspace_directAllot(t *testing.T) {
	ws, notifier := newWorkspace(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, schoolRepo, "Nursery")
	sec := testutil.CreateSection(t, schoolRepo, "A")
	amy := testutil.CreateStudent(t, schoolRepo, "Amy", 7)

	if err := ws.DirectAllot(ctx, amy); err != client.ErrNoSelection {
		t.Errorf("DirectAllot() error = %v; want ErrNoSelection", err)
	}

	if err := ws.SelectClass(ctx, cls); err != nil {
		t.Fatalf("SelectClass() failed: %v", err)
	}
	if err := ws.SelectSection(ctx, sec); err != nil {
		t.Fatalf("SelectSection() failed: %v", err)
	}

	if err := ws.DirectAllot(ctx, amy); err != nil {
		t.Fatalf("DirectAllot() failed: %v", err)
	}
	if got := len(ws.View()); got != 1 {
		t.Errorf("view len = %d; want 1", got)
	}

	// a second identical allotment conflicts and leaves state untouched
	if err := ws.DirectAllot(ctx, amy); err == nil {
		t.Fatal("DirectAllot() expected a conflict error")
	}
	if len(notifier.errors) == 0 {
		t.Error("no error notification on conflict")
	}
	if got := len(ws.View()); got != 1 {
		t.Errorf("view len = %d; want 1", got)
	}
}
