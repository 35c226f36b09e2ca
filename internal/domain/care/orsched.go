package care

import "fmt"

// OR scheduling operations. Rooms cycle Available → Booked → In Surgery →
// Available; the emergency path skips Booked and enters surgery directly.
// Patient status and the pending OR request move in lockstep with the room,
// under the same coordinator lock, so a patient is In Surgery exactly when
// one room holds them In Surgery.

// BookRoom allocates an available room to a patient ahead of surgery. The
// patient's oldest pending OR request, if any, is approved by the booking;
// surgery details left blank are filled from that request for the audit
// trail.
func (s *Service) BookRoom(actor Actor, roomID string, patientID int, surgeryName, date, timeOfDay string) (*ORRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.Room(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomAvailable {
		return nil, fmt.Errorf("room %s is %s: %w", room.Name, room.Status, ErrRoomUnavailable)
	}
	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if existing := s.store.RoomForPatient(patientID); existing != nil {
		return nil, fmt.Errorf("patient %d already holds %s: %w", patientID, existing.Name, ErrInvalidTransition)
	}

	room.Status = RoomBooked
	room.PatientID = patientID
	p.Status = PatientSurgeryScheduled
	req := s.store.PendingORRequest(patientID)
	if req != nil {
		req.Status = ORRequestApproved
		if surgeryName == "" {
			surgeryName = req.SurgeryName
		}
		if date == "" {
			date = req.Date
		}
		if timeOfDay == "" {
			timeOfDay = req.Time
		}
	}

	desc := fmt.Sprintf("OR %s allocated for surgery. Patient prep initiated.", room.Name)
	if surgeryName != "" {
		desc = fmt.Sprintf("Surgery %q booked in %s for %s at %s. Patient prep initiated.", surgeryName, room.Name, date, timeOfDay)
	}
	s.appendEvent(patientID, "Surgery Scheduled", desc,
		EventSurgery, UrgencyHigh, actor.Name, "")
	return room, nil
}

// BookRoomEmergency allocates an available room and starts surgery in one
// step, bypassing the Booked stage.
func (s *Service) BookRoomEmergency(actor Actor, roomID string, patientID int) (*ORRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.Room(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomAvailable {
		return nil, fmt.Errorf("room %s is %s: %w", room.Name, room.Status, ErrRoomUnavailable)
	}
	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if existing := s.store.RoomForPatient(patientID); existing != nil {
		return nil, fmt.Errorf("patient %d already holds %s: %w", patientID, existing.Name, ErrInvalidTransition)
	}

	room.Status = RoomInSurgery
	room.PatientID = patientID
	p.Status = PatientInSurgery
	if req := s.store.PendingORRequest(patientID); req != nil {
		req.Status = ORRequestApproved
	}

	s.appendEvent(patientID, "OR ALLOCATED (EMERGENCY)",
		fmt.Sprintf("%s allocated immediately for %s. Surgery starting now.", room.Name, p.Name),
		EventSurgery, UrgencyCritical, actor.Name, "")
	return room, nil
}

// StartSurgery moves a booked room and its occupant into surgery. The
// booking event already covers the allocation, so starting emits none.
func (s *Service) StartSurgery(actor Actor, roomID string) (*ORRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.Room(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomBooked {
		return nil, fmt.Errorf("room %s is %s: %w", room.Name, room.Status, ErrInvalidTransition)
	}
	p, err := s.store.Patient(room.PatientID)
	if err != nil {
		return nil, err
	}

	room.Status = RoomInSurgery
	p.Status = PatientInSurgery
	return room, nil
}

// ReleaseRoom frees a booked or in-surgery room: the occupant returns to
// Admitted, their approved OR request completes and the room returns to
// Available. Releasing a booked room cancels the allocation without a
// surgery having started.
func (s *Service) ReleaseRoom(actor Actor, roomID string) (*ORRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.Room(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomBooked && room.Status != RoomInSurgery {
		return nil, fmt.Errorf("room %s is %s: %w", room.Name, room.Status, ErrInvalidTransition)
	}
	p, err := s.store.Patient(room.PatientID)
	if err != nil {
		return nil, err
	}

	p.Status = PatientAdmitted
	for _, req := range s.store.ORRequests() {
		if req.PatientID == p.ID && req.Status == ORRequestApproved {
			req.Status = ORRequestCompleted
			break
		}
	}
	patientID := room.PatientID
	room.Status = RoomAvailable
	room.PatientID = 0

	s.appendEvent(patientID, "Surgery Completed",
		fmt.Sprintf("Surgery completed successfully for %s. Patient moved to post-op recovery ward. %s released.", p.Name, room.Name),
		EventSurgery, UrgencyNormal, actor.Name, "")
	return room, nil
}
