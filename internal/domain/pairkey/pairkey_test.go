package pairkey_test

import (
	"encoding/json"
	"errors"
	"testing"
	"testing/quick"

	"github.com/okian/rapport/internal/domain/pairkey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPair(t *testing.T) {
	Convey("Given two player ids", t, func() {
		a, b := "9b2f0c1e-aaaa", "1c4d7e2a-bbbb"

		Convey("Then both orders produce the same sorted key", func() {
			So(pairkey.Pair(a, b), ShouldEqual, pairkey.Pair(b, a))
			So(pairkey.Pair(a, b), ShouldEqual, "1c4d7e2a-bbbb|9b2f0c1e-aaaa")
		})

		Convey("Then Split recovers the sorted ids", func() {
			So(pairkey.Split(pairkey.Pair(a, b)), ShouldResemble, []string{b, a})
		})
	})

	Convey("Given an empty key", t, func() {
		So(pairkey.Split(""), ShouldBeNil)
	})
}

func TestOf(t *testing.T) {
	Convey("Given a variadic key request", t, func() {
		Convey("When two ids are passed", func() {
			k, err := pairkey.Of("b", "a")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, "a|b")
		})

		Convey("When three ids are passed", func() {
			k, err := pairkey.Of("c", "a", "b")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, "a|b|c")
		})

		Convey("When one or four ids are passed", func() {
			_, err := pairkey.Of("a")
			So(errors.Is(err, pairkey.ErrArity), ShouldBeTrue)
			_, err = pairkey.Of("a", "b", "c", "d")
			So(errors.Is(err, pairkey.ErrArity), ShouldBeTrue)
		})
	})
}

func TestProperty_PairSymmetric(t *testing.T) {
	f := func(a, b string) bool {
		return pairkey.Pair(a, b) == pairkey.Pair(b, a)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestProperty_TrioPermutations(t *testing.T) {
	f := func(a, b, c string) bool {
		want := pairkey.Trio(a, b, c)
		perms := [][3]string{
			{a, b, c}, {a, c, b},
			{b, a, c}, {b, c, a},
			{c, a, b}, {c, b, a},
		}
		for _, p := range perms {
			if pairkey.Trio(p[0], p[1], p[2]) != want {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestID(t *testing.T) {
	Convey("Given provider id values", t, func() {
		cases := []struct {
			in   any
			want string
			ok   bool
		}{
			{" p-1 ", "p-1", true},
			{json.Number("42"), "42", true},
			{7, "7", true},
			{int64(-3), "-3", true},
			{uint64(9), "9", true},
			{12.0, "12", true},
			{12.5, "", false},
			{"   ", "", false},
			{nil, "", false},
			{true, "", false},
		}
		for _, tc := range cases {
			got, ok := pairkey.ID(tc.in)
			So(ok, ShouldEqual, tc.ok)
			So(got, ShouldEqual, tc.want)
		}
	})

	Convey("Given ids with and without the separator", t, func() {
		So(pairkey.Reserved("a|b"), ShouldBeTrue)
		So(pairkey.Reserved("9b2f0c1e-aaaa"), ShouldBeFalse)
	})
}

func TestProperty_DistinctPairsDistinctKeys(t *testing.T) {
	// Ids without the separator give distinct keys for distinct sets.
	f := func(a, b, c uint32) bool {
		x, y, z := hex(a), hex(b), hex(c)
		if x == z || y == z {
			return true
		}
		return pairkey.Pair(x, y) != pairkey.Pair(x, z)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func hex(v uint32) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = digits[v&0xf]
		v >>= 4
	}
	return string(out)
}
