/*
 * GAIA - Cycle-driven event scheduler.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package event is a small cycle-driven event list, adapted from a
// channel-I/O completion scheduler into an instance-owned (not
// process-global) primitive usable by one Machine's interrupt controller.
// Callers Advance it by the number of simulated cycles elapsed each step;
// due events fire in order and are removed.
package event

// Callback runs when a scheduled event's remaining time reaches zero.
type Callback func(iarg int)

type event struct {
	time int // cycles remaining, relative to the previous list entry
	key  int // caller-chosen identity, used by Cancel
	cb   Callback
	iarg int
	prev *event
	next *event
}

// Scheduler is a sorted, relative-delta event list: each entry's time field
// is cycles-until-due measured from the previous entry's due time, so
// Advance only ever touches the head.
type Scheduler struct {
	head *event
	tail *event
}

// Add schedules cb to run after ticks cycles. If ticks <= 0, cb runs
// immediately, synchronously, and nothing is scheduled.
func (s *Scheduler) Add(key int, ticks int, cb Callback, iarg int) {
	if ticks <= 0 {
		cb(iarg)
		return
	}

	ev := &event{key: key, cb: cb, time: ticks, iarg: iarg}

	cur := s.head
	if cur == nil {
		s.head = ev
		s.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				s.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = s.tail
	s.tail.next = ev
	s.tail = ev
}

// Cancel removes the first pending event matching key/iarg, if any.
func (s *Scheduler) Cancel(key, iarg int) {
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.key != key || cur.iarg != iarg {
			continue
		}
		if cur.next != nil {
			cur.next.time += cur.time
			cur.next.prev = cur.prev
		} else {
			s.tail = cur.prev
		}
		if cur.prev != nil {
			cur.prev.next = cur.next
		} else {
			s.head = cur.next
		}
		return
	}
}

// Advance moves simulated time forward by ticks cycles, firing (in order)
// every event whose remaining time has reached zero.
func (s *Scheduler) Advance(ticks int) {
	cur := s.head
	if cur == nil {
		return
	}
	cur.time -= ticks
	for cur != nil && cur.time <= 0 {
		cb, iarg := cur.cb, cur.iarg
		s.head = cur.next
		if s.head != nil {
			s.head.prev = nil
		} else {
			s.tail = nil
		}
		cb(iarg) // may re-Add itself; list is already consistent before this runs
		cur = s.head
	}
}
